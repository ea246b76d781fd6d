package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/KaityXD/choas-lib/internal/server/models"
	"github.com/KaityXD/choas-lib/internal/server/registry"
	"github.com/KaityXD/choas-lib/internal/server/services"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	cardNameLen = 20
	dateLayout  = "2006-01-02 15:04"
	mib         = 1 << 20
	kib         = 1 << 10
)

var pageSizes = []int{20, 50, 100}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"fileURL":    fileURL,
		"formatDate": formatDate,
		"kb":         formatKB,
	}).ParseFS(templatesFS, "templates/*.html")
}

func fileURL(name string) string {
	return "/cdn/" + url.PathEscape(name)
}

func formatDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}

func formatKB(n int64) string {
	return fmt.Sprintf("%.1f KB", float64(n)/kib)
}

// humanSize switches to MB strictly above one MiB.
func humanSize(n int64) string {
	if n > mib {
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	}
	return formatKB(n)
}

// truncateName shortens long names to 17 runes plus "...".
func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= cardNameLen {
		return name
	}
	r := []rune(name)
	return string(r[:cardNameLen-3]) + "..."
}

// pageWindow lists the page numbers shown around the current page.
func pageWindow(page, totalPages int) []int {
	lo := max(1, page-2)
	hi := min(totalPages, page+2)
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}

type card struct {
	Name        string
	Short       string
	URL         string
	Kind        registry.Kind
	ContentType string
	Size        string
	Date        string
}

type libraryView struct {
	Cards      []card
	Page       int
	TotalPages int
	Total      int
	Limit      int
	SortBy     registry.SortBy
	Order      registry.Order
	Pages      []int
	PageSizes  []int
}

func (v libraryView) PrevPage() int { return v.Page - 1 }
func (v libraryView) NextPage() int { return v.Page + 1 }

func newLibraryView(p registry.Page, sortBy registry.SortBy, order registry.Order) libraryView {
	v := libraryView{
		Cards:      make([]card, 0, len(p.Items)),
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      p.Total,
		Limit:      p.PageSize,
		SortBy:     sortBy,
		Order:      order,
		Pages:      pageWindow(p.Page, p.TotalPages),
		PageSizes:  pageSizes,
	}
	for _, e := range p.Items {
		v.Cards = append(v.Cards, card{
			Name:        e.Name,
			Short:       truncateName(e.Name),
			URL:         fileURL(e.Name),
			Kind:        registry.KindOf(e.Name),
			ContentType: registry.ContentType(e.Name),
			Size:        humanSize(e.Size),
			Date:        formatDate(e.ModTime),
		})
	}
	return v
}

type adminView struct {
	Files   []models.Entry
	Count   int
	TotalMB string
}

func (s *HTTPServer) handleLibrary(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}

	page, err := s.files.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.HTML(http.StatusOK, "library.html", newLibraryView(page, q.SortBy, q.Order))
}

func (s *HTTPServer) handleAdmin(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := s.files.ListAll(ctx, registry.SortByName, registry.OrderAsc)
	if err != nil {
		writeError(c, err)
		return
	}

	st := services.StatsOf(entries)
	c.HTML(http.StatusOK, "admin.html", adminView{
		Files:   entries,
		Count:   st.Files,
		TotalMB: fmt.Sprintf("%.2f", float64(st.TotalBytes)/mib),
	})
}
