package onboarding

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
)

type Field string

const (
	FieldName         Field = "name"
	FieldPhone        Field = "phone"
	FieldCategory     Field = "category"
	FieldSubcategory  Field = "subcategory"
	FieldCity         Field = "city"
	FieldArea         Field = "area"
	FieldChargeType   Field = "chargeType"
	FieldChargeAmount Field = "chargeAmount"
	FieldAvailability Field = "availability"
	FieldDescription  Field = "description"
)

// Fields lists every text field in display order. Category precedes
// subcategory so a posted pair applies cleanly.
var Fields = []Field{
	FieldName, FieldPhone, FieldCategory, FieldSubcategory, FieldCity, FieldArea,
	FieldChargeType, FieldChargeAmount, FieldAvailability, FieldDescription,
}

// DefaultRequired is the required set of the worker registration form.
var DefaultRequired = []Field{FieldName, FieldCategory, FieldSubcategory, FieldCity, FieldChargeAmount}

const (
	MaxWorkImages    = 5
	MaxProfilePhotos = 1
)

type ChargeType string

const (
	Hourly ChargeType = "hourly"
	Daily  ChargeType = "daily"
	Fixed  ChargeType = "fixed"
)

func ParseChargeType(s string) (ChargeType, bool) {
	switch ChargeType(strings.ToLower(strings.TrimSpace(s))) {
	case Hourly:
		return Hourly, true
	case Daily:
		return Daily, true
	case Fixed:
		return Fixed, true
	}
	return "", false
}

// HelperText describes the amount for the selected charge type.
func (c ChargeType) HelperText() string {
	switch c {
	case Hourly:
		return "Amount you charge per hour of work"
	case Daily:
		return "Amount you charge per working day"
	case Fixed:
		return "One-time amount for the complete job"
	}
	return "Choose how you charge for your service"
}

// Form holds a provider profile before it is sent to the backend. Every
// input channel, typed or spoken, goes through Set.
type Form struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	City         string     `json:"city"`
	Area         string     `json:"area"`
	ChargeType   ChargeType `json:"chargeType"`
	ChargeAmount float64    `json:"chargeAmount"`
	Availability string     `json:"availability"`
	Description  string     `json:"description"`
	Profile      *Uploader  `json:"profile"`
	Work         *Uploader  `json:"work"`
	Required     []Field    `json:"required"`

	taxonomy catalog.Taxonomy
}

func NewForm(t catalog.Taxonomy, required ...Field) *Form {
	if len(required) == 0 {
		required = DefaultRequired
	}
	return &Form{
		ChargeType: Hourly,
		Profile:    NewUploader(MaxProfilePhotos),
		Work:       NewUploader(MaxWorkImages),
		Required:   append([]Field(nil), required...),
		taxonomy:   t,
	}
}

// Bind re-attaches the taxonomy after a form was decoded from storage.
func (f *Form) Bind(t catalog.Taxonomy) *Form {
	f.taxonomy = t
	if f.Profile == nil {
		f.Profile = NewUploader(MaxProfilePhotos)
	}
	if f.Work == nil {
		f.Work = NewUploader(MaxWorkImages)
	}
	if len(f.Required) == 0 {
		f.Required = append([]Field(nil), DefaultRequired...)
	}
	return f
}

func (f *Form) Categories() []string { return f.taxonomy.Categories() }

// SubcategoryOptions is empty until a category is chosen.
func (f *Form) SubcategoryOptions() []string {
	if f.Category == "" {
		return nil
	}
	return f.taxonomy.Subcategories(f.Category)
}

// SelectCategory always clears the subcategory, even when the category is
// unchanged, and repopulates the options.
func (f *Form) SelectCategory(c string) error {
	c = strings.TrimSpace(c)
	f.Subcategory = ""
	if c == "" {
		f.Category = ""
		return nil
	}
	if _, ok := f.taxonomy[c]; !ok {
		if m := f.matchCategory(c); m != "" {
			c = m
		} else {
			f.Category = ""
			return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
		}
	}
	f.Category = c
	return nil
}

func (f *Form) SelectSubcategory(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		f.Subcategory = ""
		return nil
	}
	if f.Category == "" {
		return fmt.Errorf("choose a category before a subcategory")
	}
	for _, opt := range f.taxonomy[f.Category] {
		if strings.EqualFold(opt, s) {
			f.Subcategory = opt
			return nil
		}
	}
	return fmt.Errorf("%q is not a subcategory of %s", s, f.Category)
}

// matchCategory lets spoken input like "plumber" pick "Plumber".
func (f *Form) matchCategory(c string) string {
	for k := range f.taxonomy {
		if strings.EqualFold(k, c) {
			return k
		}
	}
	return ""
}

var amountRe = regexp.MustCompile(`\d[\d.,]*`)

// ParseAmount extracts the first number from text such as "500 rupees".
// A comma followed by exactly three digits groups thousands ("1,200",
// "1,20,000"); any other comma is a decimal separator ("4,5").
func ParseAmount(s string) (float64, bool) {
	m := strings.TrimRight(amountRe.FindString(s), ".,")
	if m == "" {
		return 0, false
	}
	if i := strings.LastIndex(m, ","); i >= 0 {
		if strings.Contains(m, ".") || len(m)-i-1 == 3 {
			m = strings.ReplaceAll(m, ",", "")
		} else {
			m = strings.ReplaceAll(m[:i], ",", "") + "." + m[i+1:]
		}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Set is the single state setter for text fields.
func (f *Form) Set(field Field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldName:
		f.Name = value
	case FieldPhone:
		f.Phone = value
	case FieldCategory:
		return f.SelectCategory(value)
	case FieldSubcategory:
		return f.SelectSubcategory(value)
	case FieldCity:
		f.City = value
	case FieldArea:
		f.Area = value
	case FieldChargeType:
		ct, ok := ParseChargeType(value)
		if !ok {
			return fmt.Errorf("charge type must be hourly, daily or fixed")
		}
		f.ChargeType = ct
	case FieldChargeAmount:
		if value == "" {
			f.ChargeAmount = 0
			return nil
		}
		v, ok := ParseAmount(value)
		if !ok {
			// a stale amount must not survive a rejected edit
			f.ChargeAmount = 0
			return fmt.Errorf("charge amount %q is not a number", value)
		}
		f.ChargeAmount = v
	case FieldAvailability:
		f.Availability = value
	case FieldDescription:
		f.Description = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Value is the display value of field.
func (f *Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldPhone:
		return f.Phone
	case FieldCategory:
		return f.Category
	case FieldSubcategory:
		return f.Subcategory
	case FieldCity:
		return f.City
	case FieldArea:
		return f.Area
	case FieldChargeType:
		return string(f.ChargeType)
	case FieldChargeAmount:
		if f.ChargeAmount == 0 {
			return ""
		}
		return strconv.FormatFloat(f.ChargeAmount, 'f', -1, 64)
	case FieldAvailability:
		return f.Availability
	case FieldDescription:
		return f.Description
	}
	return ""
}

func (f *Form) IsRequired(field Field) bool {
	for _, r := range f.Required {
		if r == field {
			return true
		}
	}
	return false
}

var validate = validator.New()

type rule struct {
	value func(*Form) any
	tag   string
	msg   string
}

var rules = map[Field]rule{
	FieldName:         {func(f *Form) any { return strings.TrimSpace(f.Name) }, "required", "name is required"},
	FieldPhone:        {func(f *Form) any { return strings.TrimSpace(f.Phone) }, "required", "phone is required"},
	FieldCategory:     {func(f *Form) any { return f.Category }, "required", "category is required"},
	FieldSubcategory:  {func(f *Form) any { return f.Subcategory }, "required", "subcategory is required"},
	FieldCity:         {func(f *Form) any { return strings.TrimSpace(f.City) }, "required", "city is required"},
	FieldArea:         {func(f *Form) any { return strings.TrimSpace(f.Area) }, "required", "area is required"},
	FieldChargeType:   {func(f *Form) any { return string(f.ChargeType) }, "oneof=hourly daily fixed", "charge type must be hourly, daily or fixed"},
	FieldChargeAmount: {func(f *Form) any { return f.ChargeAmount }, "gt=0", "charge amount must be greater than zero"},
	FieldAvailability: {func(f *Form) any { return strings.TrimSpace(f.Availability) }, "required", "availability is required"},
	FieldDescription:  {func(f *Form) any { return strings.TrimSpace(f.Description) }, "required", "description is required"},
}

// Missing names every failed precondition of the required set, in order.
func (f *Form) Missing() []string {
	var out []string
	for _, fl := range f.Required {
		r, ok := rules[fl]
		if !ok {
			continue
		}
		if err := validate.Var(r.value(f), r.tag); err != nil {
			out = append(out, r.msg)
		}
	}
	if f.Category != "" && f.Subcategory != "" && !f.taxonomy.Has(f.Category, f.Subcategory) {
		out = append(out, "subcategory does not belong to the selected category")
	}
	return out
}

// CanSubmit drives the disabled state of the submit control.
func (f *Form) CanSubmit() bool { return len(f.Missing()) == 0 }

// Submission encodes the form. Attached images make it multipart.
func (f *Form) Submission() (domain.Submission, error) {
	s := domain.Submission{Values: map[string][]string{}}
	set := func(k, v string) {
		if v != "" {
			s.Values.Set(k, v)
		}
	}
	set("name", f.Name)
	set("phone", f.Phone)
	set("category", f.Category)
	set("subcategory", f.Subcategory)
	set("city", f.City)
	set("area", f.Area)
	set("chargeType", string(f.ChargeType))
	if f.ChargeAmount > 0 {
		s.Values.Set("chargeAmount", strconv.FormatFloat(f.ChargeAmount, 'f', -1, 64))
	}
	set("availability", f.Availability)
	set("description", f.Description)

	for _, u := range []struct {
		field string
		up    *Uploader
	}{{"profilePhoto", f.Profile}, {"workImages", f.Work}} {
		if u.up == nil {
			continue
		}
		for _, img := range u.up.Images {
			b, err := img.Bytes()
			if err != nil {
				return domain.Submission{}, fmt.Errorf("decode %s: %w", img.Name, err)
			}
			s.Files = append(s.Files, domain.SubmissionFile{Field: u.field, Filename: img.Name, Data: b})
		}
	}
	return s, nil
}

// Submit refuses gated forms before anything is sent.
func (f *Form) Submit(ctx context.Context, b domain.Backend, category string) (domain.MutationEnvelope, error) {
	if missing := f.Missing(); len(missing) > 0 {
		return domain.FailedMutation(strings.Join(missing, "; ")),
			fmt.Errorf("%w: %s", domain.ErrSubmitGated, strings.Join(missing, "; "))
	}
	s, err := f.Submission()
	if err != nil {
		return domain.FailedMutation(err.Error()), err
	}
	return b.Create(ctx, category, s), nil
}
