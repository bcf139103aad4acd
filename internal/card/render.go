package card

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("listing").Funcs(template.FuncMap{
	"navHref":  navHref,
	"itemHref": itemHref,
	"cardCtx": func(p Page, v View) navCtx { return navCtx{Page: p, View: v} },
	"add":     func(a, b int) int { return a + b },
}).ParseFS(templateFS, "templates/*.html"))

// Page is where a layout is being rendered; carousel links keep the rest
// of the query intact.
type Page struct {
	Path  string
	Query url.Values
}

// ImageParam is the query key holding the carousel position of one card.
func ImageParam(id string) string { return "img." + id }

// ImageErrorParam is the query key reporting which image of a card failed
// to load.
func ImageErrorParam(id string) string { return "imgerr." + id }

// ImageIndexFrom reads carousel positions back out of a query.
func ImageIndexFrom(q url.Values) map[string]int { return indexParams(q, "img.") }

// ImageErrorsFrom reads failed image positions back out of a query.
func ImageErrorsFrom(q url.Values) map[string]int { return indexParams(q, "imgerr.") }

func indexParams(q url.Values, prefix string) map[string]int {
	out := map[string]int{}
	for k, vs := range q {
		if len(k) <= len(prefix) || !strings.HasPrefix(k, prefix) || len(vs) == 0 {
			continue
		}
		if n, err := strconv.Atoi(vs[0]); err == nil {
			out[k[len(prefix):]] = n
		}
	}
	return out
}

// locationParams travel from a listing page to the item links so the item
// is looked up around the same origin.
var locationParams = []string{"lat", "lng", "distance"}

// itemHref links to a listing or one of its actions, keeping the page's
// location parameters.
func itemHref(p Page, category, id, action string) string {
	path := "/" + url.PathEscape(category) + "/" + url.PathEscape(id)
	if action != "" {
		path += "/" + action
	}
	q := url.Values{}
	for _, k := range locationParams {
		if v := p.Query.Get(k); v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

type navCtx struct {
	Page Page
	View View
}

func navHref(p Page, id string, idx int) string {
	q := url.Values{}
	for k, vs := range p.Query {
		q[k] = append([]string(nil), vs...)
	}
	q.Set(ImageParam(id), strconv.Itoa(idx))
	// a load error belongs to the image being left
	q.Del(ImageErrorParam(id))
	return p.Path + "?" + q.Encode()
}

type layoutCtx struct {
	Mode  string
	Page  Page
	Views []View
}

// Render writes the layout as an HTML fragment. A card that fails to
// render is replaced by an error stub instead of aborting the grid.
func Render(w io.Writer, l Layout, p Page) error {
	views := make([]View, 0, len(l.Cards))
	for _, c := range l.Cards {
		views = append(views, safeView(c))
	}
	return tmpl.ExecuteTemplate(w, "grid", layoutCtx{Mode: l.Mode.String(), Page: p, Views: views})
}

// RenderHTML is Render into a string usable inside a page template.
func RenderHTML(l Layout, p Page) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, l, p); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func safeView(c *Card) (v View) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("id", c.Item.ID).Str("panic", fmt.Sprint(rec)).Msg("card view failed")
			v = View{ID: c.Item.ID, Category: c.Item.Category, Title: c.Item.Title, Glyph: "📍"}
		}
	}()
	return c.View()
}
