package repository

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page номер страницы с единицы; нулевые поля берут значения по умолчанию
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	return p
}

// Paginated конверт списочных ответов API
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Paginate режет уже отфильтрованный и упорядоченный список. Страница за
// последней даёт пустой Data, Total остаётся полным.
func Paginate[T any](items []T, p Page) Paginated[T] {
	p = p.normalize()
	total := len(items)
	out := Paginated[T]{
		Data:       []T{},
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}
	if p.Page > out.TotalPages {
		return out
	}
	start := (p.Page - 1) * p.Limit
	end := min(start+p.Limit, total)
	out.Data = items[start:end]
	return out
}
