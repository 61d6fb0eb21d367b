package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category enumerates the flyer output types a project can be created for.
type Category string

const (
	CategoryEvent            Category = "event"
	CategorySalePromo        Category = "salePromo"
	CategoryRestaurantFood   Category = "restaurantFood"
	CategoryRealEstate       Category = "realEstate"
	CategoryJobPosting       Category = "jobPosting"
	CategoryGrandOpening     Category = "grandOpening"
	CategoryFitnessWellness  Category = "fitnessWellness"
	CategoryPartyCelebration Category = "partyCelebration"
	CategoryClassWorkshop    Category = "classWorkshop"
	CategoryServiceBusiness  Category = "serviceBusiness"
	CategoryAnnouncement     Category = "announcement"
)

// TextField names a semantic text slot on the flyer.
type TextField string

const (
	FieldHeadline       TextField = "headline"
	FieldSubheadline    TextField = "subheadline"
	FieldBodyText       TextField = "bodyText"
	FieldDate           TextField = "date"
	FieldTime           TextField = "time"
	FieldVenueName      TextField = "venueName"
	FieldAddress        TextField = "address"
	FieldPrice          TextField = "price"
	FieldDiscountText   TextField = "discountText"
	FieldPromoCode      TextField = "promoCode"
	FieldCTAText        TextField = "ctaText"
	FieldPhone          TextField = "phone"
	FieldEmail          TextField = "email"
	FieldWebsite        TextField = "website"
	FieldSocialHandle   TextField = "socialHandle"
	FieldAdditionalInfo TextField = "additionalInfo"
)

// TextProminence controls how dominant typography is in the composition.
type TextProminence string

const (
	ProminenceSubtle   TextProminence = "subtle"
	ProminenceBalanced TextProminence = "balanced"
	ProminenceDominant TextProminence = "dominant"
)

// ImageryType selects whether the generated artwork carries rendered text.
type ImageryType string

const (
	ImageryWithText ImageryType = "withText"
	ImageryTextFree ImageryType = "textFree"
)

// BackgroundStyle is the background treatment applied to the palette.
type BackgroundStyle string

const (
	BackgroundSolid    BackgroundStyle = "solid"
	BackgroundGradient BackgroundStyle = "gradient"
	BackgroundTextured BackgroundStyle = "textured"
	BackgroundLight    BackgroundStyle = "light"
	BackgroundDark     BackgroundStyle = "dark"
)

// Corner is a placement anchor for logos and QR codes.
type Corner string

const (
	CornerTopLeft     Corner = "topLeft"
	CornerTopRight    Corner = "topRight"
	CornerBottomLeft  Corner = "bottomLeft"
	CornerBottomRight Corner = "bottomRight"
)

// ImagerySource selects where the main imagery of the flyer comes from.
type ImagerySource string

const (
	ImageryNone          ImagerySource = ""
	ImageryUserPhotos    ImagerySource = "userPhotos"
	ImageryAIDescription ImagerySource = "aiDescription"
)

// DefaultCorner is where logos and QR codes go when no placement is given.
const DefaultCorner = CornerBottomRight

func (t TextProminence) Valid() bool {
	switch t {
	case ProminenceSubtle, ProminenceBalanced, ProminenceDominant:
		return true
	}
	return false
}

func (t ImageryType) Valid() bool {
	return t == ImageryWithText || t == ImageryTextFree
}

func (b BackgroundStyle) Valid() bool {
	switch b {
	case BackgroundSolid, BackgroundGradient, BackgroundTextured, BackgroundLight, BackgroundDark:
		return true
	}
	return false
}

func (c Corner) Valid() bool {
	switch c {
	case CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
		return true
	}
	return false
}

// Valid reports whether s is a known source. The empty source means no
// imagery and is valid.
func (s ImagerySource) Valid() bool {
	switch s {
	case ImageryNone, ImageryUserPhotos, ImageryAIDescription:
		return true
	}
	return false
}

// VisualConfig groups style related choices.
type VisualConfig struct {
	Style           string         `json:"style"`
	Mood            string         `json:"mood"`
	TextProminence  TextProminence `json:"text_prominence"`
	IncludeElements []string       `json:"include_elements,omitempty"`
	AvoidElements   []string       `json:"avoid_elements,omitempty"`
	ImageryType     ImageryType    `json:"imagery_type"`
}

// ColorConfig is a named palette plus background treatment.
type ColorConfig struct {
	Preset     string          `json:"preset"`
	Background BackgroundStyle `json:"background"`
}

// OutputConfig describes the rendered artifact.
type OutputConfig struct {
	AspectRatio string `json:"aspect_ratio"`
}

// LogoAttachment carries the brand logo bytes and where to place them.
type LogoAttachment struct {
	Data      []byte `json:"data,omitempty"`
	MIME      string `json:"mime,omitempty"`
	Placement Corner `json:"placement"`
}

// ImageryConfig carries either user photos or an AI imagery description.
type ImageryConfig struct {
	Source      ImagerySource `json:"source,omitempty"`
	Photos      [][]byte      `json:"photos,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Project is the working document edited by the creation wizard.
type Project struct {
	ID                  string               `json:"id"`
	Category            Category             `json:"category"`
	Text                map[TextField]string `json:"text"`
	Visuals             VisualConfig         `json:"visuals"`
	Colors              ColorConfig          `json:"colors"`
	Output              OutputConfig         `json:"output"`
	Logo                *LogoAttachment      `json:"logo,omitempty"`
	Imagery             ImageryConfig        `json:"imagery"`
	QR                  *QRSettings          `json:"qr,omitempty"`
	TargetAudience      string               `json:"target_audience,omitempty"`
	SpecialInstructions string               `json:"special_instructions,omitempty"`
	AdditionalNotes     string               `json:"additional_notes,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

const (
	DefaultStyle       = "modern"
	DefaultMood        = "friendly"
	DefaultPreset      = "brandClassic"
	DefaultAspectRatio = "4:5"
)

var allowedAspectRatios = map[string]struct{}{
	"1:1":    {},
	"4:5":    {},
	"9:16":   {},
	"16:9":   {},
	"letter": {},
}

// AspectRatios lists the supported output formats in display order.
func AspectRatios() []string {
	return []string{"1:1", "4:5", "9:16", "16:9", "letter"}
}

// IsAllowedAspectRatio reports whether ratio is one of the fixed output formats.
func IsAllowedAspectRatio(ratio string) bool {
	_, ok := allowedAspectRatios[ratio]
	return ok
}

// NewProject creates a fresh project for category with the field defaults from catalog.
func NewProject(category Category, catalog Catalog) *Project {
	now := time.Now().UTC()
	p := &Project{
		ID:       uuid.NewString(),
		Category: category,
		Text:     make(map[TextField]string),
		Visuals: VisualConfig{
			Style:          DefaultStyle,
			Mood:           DefaultMood,
			TextProminence: ProminenceBalanced,
			ImageryType:    ImageryWithText,
		},
		Colors: ColorConfig{
			Preset:     DefaultPreset,
			Background: BackgroundGradient,
		},
		Output:    OutputConfig{AspectRatio: DefaultAspectRatio},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, fd := range catalog.Fields(category) {
		p.Text[fd.Field] = fd.Default
	}
	return p
}

// Value returns the trimmed text stored for field.
func (p *Project) Value(field TextField) string {
	if p == nil || p.Text == nil {
		return ""
	}
	return strings.TrimSpace(p.Text[field])
}

// SetText stores value for field and bumps UpdatedAt.
func (p *Project) SetText(field TextField, value string) {
	if p.Text == nil {
		p.Text = make(map[TextField]string)
	}
	p.Text[field] = value
	p.Touch()
}

// Touch records a mutation.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// MissingRequired lists the category-required fields that are still blank.
func (p *Project) MissingRequired(catalog Catalog) []TextField {
	if p == nil {
		return nil
	}
	var missing []TextField
	for _, fd := range catalog.Fields(p.Category) {
		if fd.Required && p.Value(fd.Field) == "" {
			missing = append(missing, fd.Field)
		}
	}
	return missing
}

// ValidForGeneration reports whether every required field is filled.
func (p *Project) ValidForGeneration(catalog Catalog) bool {
	return p != nil && len(p.MissingRequired(catalog)) == 0
}

// Clone returns a deep copy so callers can hand projects across goroutines.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Text = make(map[TextField]string, len(p.Text))
	for k, v := range p.Text {
		cp.Text[k] = v
	}
	cp.Visuals.IncludeElements = append([]string(nil), p.Visuals.IncludeElements...)
	cp.Visuals.AvoidElements = append([]string(nil), p.Visuals.AvoidElements...)
	if p.Logo != nil {
		logo := *p.Logo
		logo.Data = append([]byte(nil), p.Logo.Data...)
		cp.Logo = &logo
	}
	if len(p.Imagery.Photos) > 0 {
		cp.Imagery.Photos = make([][]byte, len(p.Imagery.Photos))
		for i, ph := range p.Imagery.Photos {
			cp.Imagery.Photos[i] = append([]byte(nil), ph...)
		}
	}
	if p.QR != nil {
		qr := *p.QR
		cp.QR = &qr
	}
	return &cp
}
