package models

// AgentProfile describes the real-estate agent a website is provisioned for.
// Headshot and Bio are pointers so an absent field can be told apart from an empty one.
type AgentProfile struct {
	AgentName string  `json:"agent_name"`
	Brokerage string  `json:"brokerage"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	CityArea  string  `json:"city_area"`
	Headshot  *string `json:"headshot,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type SitemapPlan struct {
	Pages      []string `json:"pages"`
	Components []string `json:"components"`

	// Prompt is the planning request text. It is built for every agent and never sent.
	Prompt string `json:"-"`
}

type CustomAttributes struct {
	AgentName   string  `json:"agent_name"`
	Brokerage   string  `json:"brokerage"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	CityArea    string  `json:"city_area"`
	HeadshotURL *string `json:"headshot_url"`
	Bio         string  `json:"bio"`
}

type SiteCreationResult struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Template         string           `json:"template"`
	CustomAttributes CustomAttributes `json:"custom_attributes"`
}

type WebsiteStatus string

// StatusCreated is the only status a website record is ever given.
const StatusCreated WebsiteStatus = "created"

type WebsiteRecord struct {
	WebsiteURL     string        `json:"website_url"`
	SiteIdentifier string        `json:"site_identifier"`
	Status         WebsiteStatus `json:"status"`
}
