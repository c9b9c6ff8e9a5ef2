package queryparams

// Liste uçları için ortak sayfalama/sıralama parametreleri.

const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 200
	DefaultOrderBy = "desc"
)

// ListParams query string'den parse edilen liste parametreleri.
type ListParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
	SortBy  string `query:"sort_by"`
	OrderBy string `query:"order_by"`
	Status  string `query:"status"`
	Search  string `query:"search"`
}

// DefaultListParams verilen sıralama sütunuyla varsayılan parametreler.
func DefaultListParams(sortBy string) ListParams {
	return ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		SortBy:  sortBy,
		OrderBy: DefaultOrderBy,
	}
}

// Validate sınırları uygular.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		p.PerPage = DefaultPerPage
	}
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = DefaultOrderBy
	}
}

// CalculateOffset SQL offset değerini hesaplar.
func (p *ListParams) CalculateOffset() int {
	return (p.Page - 1) * p.PerPage
}

// PaginationMeta sayfalama üst verisi.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResult veri + meta.
type PaginatedResult struct {
	Data interface{}    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// CalculateTotalPages toplam sayfa sayısı.
func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := int(totalItems) / perPage
	if int(totalItems)%perPage != 0 {
		pages++
	}
	return pages
}
