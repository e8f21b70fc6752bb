// ABOUTME: Organization record shared by enrichment and search responses.
// ABOUTME: Every field except the Apollo ID is optional and decodes to nil when absent.

package apollo

import "errors"

// ErrMissingIdentifier is returned by Check when a response lacks a primary
// identifier or a required result count.
var ErrMissingIdentifier = errors.New("response is missing a required identifier or count")

// Phone is a phone number as reported by Apollo.
type Phone struct {
	Number          *string `json:"number,omitempty"`
	Source          *string `json:"source,omitempty"`
	SanitizedNumber *string `json:"sanitized_number,omitempty"`
}

// Organization is a full company record.
type Organization struct {
	ID                     string   `json:"id"`
	Name                   *string  `json:"name,omitempty"`
	WebsiteURL             *string  `json:"website_url,omitempty"`
	BlogURL                *string  `json:"blog_url,omitempty"`
	AngellistURL           *string  `json:"angellist_url,omitempty"`
	LinkedinURL            *string  `json:"linkedin_url,omitempty"`
	TwitterURL             *string  `json:"twitter_url,omitempty"`
	FacebookURL            *string  `json:"facebook_url,omitempty"`
	CrunchbaseURL          *string  `json:"crunchbase_url,omitempty"`
	LogoURL                *string  `json:"logo_url,omitempty"`
	PrimaryPhone           *Phone   `json:"primary_phone,omitempty"`
	Phone                  *string  `json:"phone,omitempty"`
	Languages              []string `json:"languages"`
	AlexaRanking           *int     `json:"alexa_ranking,omitempty"`
	LinkedinUID            *string  `json:"linkedin_uid,omitempty"`
	FoundedYear            *int     `json:"founded_year,omitempty"`
	PubliclyTradedSymbol   *string  `json:"publicly_traded_symbol,omitempty"`
	PubliclyTradedExchange *string  `json:"publicly_traded_exchange,omitempty"`
	PrimaryDomain          *string  `json:"primary_domain,omitempty"`
	Industry               *string  `json:"industry,omitempty"`
	Industries             []string `json:"industries"`
	SecondaryIndustries    []string `json:"secondary_industries"`
	Keywords               []string `json:"keywords"`
	EstimatedNumEmployees  *int     `json:"estimated_num_employees,omitempty"`
	RawAddress             *string  `json:"raw_address,omitempty"`
	StreetAddress          *string  `json:"street_address,omitempty"`
	City                   *string  `json:"city,omitempty"`
	State                  *string  `json:"state,omitempty"`
	PostalCode             *string  `json:"postal_code,omitempty"`
	Country                *string  `json:"country,omitempty"`
	AnnualRevenue          *float64 `json:"annual_revenue,omitempty"`
	AnnualRevenuePrinted   *string  `json:"annual_revenue_printed,omitempty"`
	TotalFunding           *float64 `json:"total_funding,omitempty"`
	TotalFundingPrinted    *string  `json:"total_funding_printed,omitempty"`
	LatestFundingStage     *string  `json:"latest_funding_stage,omitempty"`
	LatestFundingRoundDate *string  `json:"latest_funding_round_date,omitempty"`
	TechnologyNames        []string `json:"technology_names"`
	ShortDescription       *string  `json:"short_description,omitempty"`
	SeoDescription         *string  `json:"seo_description,omitempty"`
}

// Check reports whether the record carries its Apollo ID.
func (o *Organization) Check() error {
	if o.ID == "" {
		return ErrMissingIdentifier
	}
	return nil
}
