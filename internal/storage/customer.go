package storage

type Customer struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	IsActive bool     `json:"is_active"`
	Storages []string `json:"storages"`
}

func (c *Customer) HasStorage(number string) bool {
	for _, s := range c.Storages {
		if s == number {
			return true
		}
	}
	return false
}
