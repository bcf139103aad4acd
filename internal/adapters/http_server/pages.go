package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
	"nearby_market/internal/onboarding"
)

//go:embed templates/*.html
var pageFS embed.FS

var pages = template.Must(template.New("pages").ParseFS(pageFS, "templates/*.html"))

type listingPage struct {
	Title    string
	Category catalog.Category
	Origin   domain.Location
	Source   string
	Query    string
	Grid     template.HTML
	Recent   []domain.RecentSearch
	Back     string
}

type fieldView struct {
	Name     string
	Label    string
	Value    string
	Required bool
	Long     bool
}

type chargeOption struct {
	Value   string
	Checked bool
}

type uploadView struct {
	Field  string
	Remove string
	Label  string
	Max    int
	Images []onboarding.Image
	CanAdd bool
}

type onboardingPage struct {
	Slug          string
	Target        string
	Fields        []fieldView
	Category      string
	Categories    []string
	Subcategory   string
	Subcategories []string
	Charges       []chargeOption
	ChargeHelper  string
	Uploads       []uploadView
	Missing       []string
	CanSubmit     bool
	Notices       []domain.Notice
	Submitted     bool
	Message       string
}

var fieldLabels = map[onboarding.Field]string{
	onboarding.FieldName:         "Full name",
	onboarding.FieldPhone:        "Phone",
	onboarding.FieldCity:         "City",
	onboarding.FieldArea:         "Area",
	onboarding.FieldChargeAmount: "Charge amount",
	onboarding.FieldAvailability: "Availability",
	onboarding.FieldDescription:  "About your work",
}

func newOnboardingPage(slug, target string, f *onboarding.Form, notices []domain.Notice) onboardingPage {
	p := onboardingPage{
		Slug:          slug,
		Target:        target,
		Category:      f.Category,
		Categories:    f.Categories(),
		Subcategory:   f.Subcategory,
		Subcategories: f.SubcategoryOptions(),
		ChargeHelper:  f.ChargeType.HelperText(),
		Missing:       f.Missing(),
		CanSubmit:     f.CanSubmit(),
		Notices:       notices,
	}
	for _, fl := range onboarding.Fields {
		label, ok := fieldLabels[fl]
		if !ok {
			continue // selects and radios are rendered on their own
		}
		p.Fields = append(p.Fields, fieldView{
			Name: string(fl), Label: label, Value: f.Value(fl),
			Required: f.IsRequired(fl), Long: fl == onboarding.FieldDescription,
		})
	}
	for _, ct := range []onboarding.ChargeType{onboarding.Hourly, onboarding.Daily, onboarding.Fixed} {
		p.Charges = append(p.Charges, chargeOption{Value: string(ct), Checked: ct == f.ChargeType})
	}
	p.Uploads = []uploadView{
		{Field: "profilePhoto", Remove: "removeProfile", Label: "Profile photo", Max: f.Profile.Max, Images: f.Profile.Images, CanAdd: f.Profile.CanAdd()},
		{Field: "workImages", Remove: "removeWork", Label: "Work images", Max: f.Work.Max, Images: f.Work.Images, CanAdd: f.Work.CanAdd()},
	}
	return p
}

// renderPage executes into a buffer so a template error never leaves a
// half-written page behind.
func renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render page failed")
		writeProblem(w, http.StatusInternalServerError, "Render failed", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Str("template", name).Msg("write page failed")
	}
}
