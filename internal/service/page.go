package service

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page параметры пагинации: Number начинается с 1
type Page struct {
	Number int
	Size   int
}

// Normalize подставляет дефолты и ограничивает размер страницы
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset смещение для SQL
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages число страниц при total записях
func (p Page) TotalPages(total int64) int64 {
	if p.Size <= 0 || total == 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}
