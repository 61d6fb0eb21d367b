package domain

// FieldDescriptor describes one text slot offered by a category.
type FieldDescriptor struct {
	Field       TextField `json:"field"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
	Default     string    `json:"default,omitempty"`
}

// CategoryInfo is the display metadata for a category.
type CategoryInfo struct {
	Category    Category `json:"category"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
}

// Intent is the first phase of category selection.
type Intent string

const (
	IntentPromote   Intent = "promote"
	IntentSell      Intent = "sell"
	IntentInform    Intent = "inform"
	IntentCelebrate Intent = "celebrate"
)

// Catalog is the read-only configuration table the wizard validates against.
type Catalog struct {
	fields     map[Category][]FieldDescriptor
	categories []CategoryInfo
	intents    map[Intent][]Category
}

func req(field TextField, label, placeholder string) FieldDescriptor {
	return FieldDescriptor{Field: field, Label: label, Placeholder: placeholder, Required: true}
}

func opt(field TextField, label, placeholder string) FieldDescriptor {
	return FieldDescriptor{Field: field, Label: label, Placeholder: placeholder}
}

// DefaultCatalog returns the built-in field table.
func DefaultCatalog() Catalog {
	return Catalog{
		fields: map[Category][]FieldDescriptor{
			CategoryEvent: {
				req(FieldHeadline, "Event Name", "Summer Music Festival"),
				opt(FieldSubheadline, "Tagline", "A night to remember"),
				req(FieldDate, "Date", "Saturday, July 15"),
				opt(FieldTime, "Time", "7:00 PM"),
				req(FieldVenueName, "Venue", "Riverside Park"),
				opt(FieldAddress, "Address", "123 Main Street"),
				opt(FieldPrice, "Ticket Price", "$25"),
				opt(FieldCTAText, "Call to Action", "Get Tickets"),
				opt(FieldWebsite, "Website", "example.com/tickets"),
			},
			CategorySalePromo: {
				req(FieldHeadline, "Sale Headline", "Summer Clearance"),
				req(FieldDiscountText, "Discount", "Up to 50% off"),
				opt(FieldSubheadline, "Details", "Storewide savings"),
				opt(FieldDate, "Sale Dates", "June 1 - June 7"),
				opt(FieldPromoCode, "Promo Code", "SUMMER50"),
				opt(FieldCTAText, "Call to Action", "Shop Now"),
				opt(FieldAddress, "Store Address", "456 Market Ave"),
				opt(FieldWebsite, "Website", "shop.example.com"),
			},
			CategoryRestaurantFood: {
				req(FieldHeadline, "Restaurant or Dish", "Mario's Trattoria"),
				opt(FieldSubheadline, "Tagline", "Authentic Italian"),
				opt(FieldBodyText, "Menu Highlights", "Margherita pizza, lasagna, tiramisu"),
				opt(FieldPrice, "Price", "From $12"),
				opt(FieldAddress, "Address", "78 Olive Street"),
				opt(FieldPhone, "Phone", "(555) 123-4567"),
				opt(FieldWebsite, "Website", "marios.example.com"),
				opt(FieldCTAText, "Call to Action", "Order Now"),
			},
			CategoryRealEstate: {
				req(FieldHeadline, "Listing Title", "Charming 3BR Home"),
				req(FieldPrice, "Price", "$450,000"),
				req(FieldAddress, "Address", "12 Maple Drive"),
				opt(FieldBodyText, "Features", "3 bed, 2 bath, 1,800 sq ft"),
				opt(FieldDate, "Open House", "Sunday 1-4 PM"),
				opt(FieldPhone, "Agent Phone", "(555) 987-6543"),
				opt(FieldEmail, "Agent Email", "agent@example.com"),
				opt(FieldWebsite, "Listing URL", "homes.example.com/12-maple"),
			},
			CategoryJobPosting: {
				req(FieldHeadline, "Job Title", "Barista Wanted"),
				opt(FieldSubheadline, "Company", "Bean There Cafe"),
				opt(FieldBodyText, "Requirements", "Weekend availability, friendly attitude"),
				opt(FieldPrice, "Pay", "$18/hour"),
				opt(FieldAddress, "Location", "Downtown"),
				req(FieldEmail, "Apply Email", "jobs@example.com"),
				opt(FieldPhone, "Phone", "(555) 222-3333"),
				opt(FieldCTAText, "Call to Action", "Apply Today"),
			},
			CategoryGrandOpening: {
				req(FieldHeadline, "Business Name", "Bloom Flower Shop"),
				req(FieldDate, "Opening Date", "Friday, May 3"),
				opt(FieldTime, "Time", "10:00 AM"),
				opt(FieldAddress, "Address", "9 Garden Lane"),
				opt(FieldDiscountText, "Opening Offer", "20% off opening day"),
				opt(FieldCTAText, "Call to Action", "Join Us"),
				opt(FieldWebsite, "Website", "bloom.example.com"),
			},
			CategoryFitnessWellness: {
				req(FieldHeadline, "Class or Studio", "Sunrise Yoga"),
				opt(FieldSubheadline, "Tagline", "Find your balance"),
				opt(FieldDate, "Schedule", "Mon, Wed, Fri"),
				opt(FieldTime, "Time", "6:30 AM"),
				opt(FieldVenueName, "Studio", "Zen Loft"),
				opt(FieldPrice, "Price", "First class free"),
				opt(FieldCTAText, "Call to Action", "Book a Spot"),
				opt(FieldSocialHandle, "Social Handle", "@zenloft"),
			},
			CategoryPartyCelebration: {
				req(FieldHeadline, "Occasion", "Emma's 30th Birthday"),
				req(FieldDate, "Date", "Saturday, Sept 9"),
				opt(FieldTime, "Time", "8:00 PM"),
				opt(FieldVenueName, "Venue", "The Rooftop"),
				opt(FieldAddress, "Address", "200 High Street"),
				opt(FieldAdditionalInfo, "Details", "Dress code: cocktail"),
			},
			CategoryClassWorkshop: {
				req(FieldHeadline, "Workshop Title", "Intro to Pottery"),
				opt(FieldSubheadline, "Instructor", "with Jamie Lee"),
				req(FieldDate, "Date", "Every Thursday"),
				opt(FieldTime, "Time", "6:00 PM"),
				opt(FieldVenueName, "Venue", "Clay Studio"),
				opt(FieldPrice, "Fee", "$40 per session"),
				opt(FieldCTAText, "Call to Action", "Reserve Your Seat"),
				opt(FieldWebsite, "Website", "clay.example.com"),
			},
			CategoryServiceBusiness: {
				req(FieldHeadline, "Business Name", "Sparkle Cleaning Co."),
				opt(FieldSubheadline, "Services", "Home and office cleaning"),
				opt(FieldBodyText, "Details", "Licensed, insured, eco-friendly"),
				opt(FieldPrice, "Starting Price", "From $99"),
				req(FieldPhone, "Phone", "(555) 444-5555"),
				opt(FieldWebsite, "Website", "sparkle.example.com"),
				opt(FieldCTAText, "Call to Action", "Call for a Free Quote"),
			},
			CategoryAnnouncement: {
				req(FieldHeadline, "Announcement", "We're Moving!"),
				opt(FieldBodyText, "Details", "Find us at our new location starting June 1"),
				opt(FieldDate, "Effective Date", "June 1"),
				opt(FieldAddress, "Address", "500 New Street"),
				opt(FieldWebsite, "Website", "example.com"),
			},
		},
		categories: []CategoryInfo{
			{CategoryEvent, "Event", "Concerts, festivals, meetups"},
			{CategorySalePromo, "Sale & Promotion", "Discounts and limited offers"},
			{CategoryRestaurantFood, "Restaurant & Food", "Menus, specials, food trucks"},
			{CategoryRealEstate, "Real Estate", "Listings and open houses"},
			{CategoryJobPosting, "Job Posting", "Hiring announcements"},
			{CategoryGrandOpening, "Grand Opening", "New business launches"},
			{CategoryFitnessWellness, "Fitness & Wellness", "Classes, gyms, studios"},
			{CategoryPartyCelebration, "Party & Celebration", "Birthdays, weddings, parties"},
			{CategoryClassWorkshop, "Class & Workshop", "Lessons and workshops"},
			{CategoryServiceBusiness, "Service Business", "Local services and trades"},
			{CategoryAnnouncement, "Announcement", "News and updates"},
		},
		intents: map[Intent][]Category{
			IntentPromote:   {CategoryEvent, CategoryGrandOpening, CategoryClassWorkshop, CategoryFitnessWellness},
			IntentSell:      {CategorySalePromo, CategoryRestaurantFood, CategoryRealEstate, CategoryServiceBusiness},
			IntentInform:    {CategoryAnnouncement, CategoryJobPosting},
			IntentCelebrate: {CategoryPartyCelebration, CategoryEvent},
		},
	}
}

// Fields returns the descriptors configured for category in display order.
func (c Catalog) Fields(category Category) []FieldDescriptor {
	return c.fields[category]
}

// RequiredFields lists the fields that must be filled before generation.
func (c Catalog) RequiredFields(category Category) []TextField {
	var out []TextField
	for _, fd := range c.fields[category] {
		if fd.Required {
			out = append(out, fd.Field)
		}
	}
	return out
}

// Has reports whether category is configured.
func (c Catalog) Has(category Category) bool {
	_, ok := c.fields[category]
	return ok
}

// Descriptor looks up a single field for category.
func (c Catalog) Descriptor(category Category, field TextField) (FieldDescriptor, bool) {
	for _, fd := range c.fields[category] {
		if fd.Field == field {
			return fd, true
		}
	}
	return FieldDescriptor{}, false
}

func (c Catalog) Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), c.categories...)
}

func (c Catalog) Intents() []Intent {
	return []Intent{IntentPromote, IntentSell, IntentInform, IntentCelebrate}
}

// OutputTypes returns the ordered categories offered for intent.
func (c Catalog) OutputTypes(intent Intent) ([]Category, bool) {
	cats, ok := c.intents[intent]
	return cats, ok
}
