package domain

// UserData is the signup payload. Credential is a password hash; the plaintext never reaches the context.
type UserData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Credential    string `json:"-"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

// BillingInfo is the optional billing payload.
type BillingInfo struct {
	CompanyName string `json:"companyName"`
	VATNumber   string `json:"vatNumber,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Context is the state accumulated over one onboarding attempt.
// Each field is set by its own step and only replaced by a fresh submission of that step.
type Context struct {
	Plan          Plan         `json:"plan,omitempty"`
	UserData      *UserData    `json:"userData,omitempty"`
	WorkspaceName string       `json:"workspaceName,omitempty"`
	WorkspaceSlug string       `json:"workspaceSlug,omitempty"`
	BillingInfo   *BillingInfo `json:"billingInfo,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate a machine's context through a snapshot.
func (c Context) Clone() Context {
	out := c
	if c.UserData != nil {
		u := *c.UserData
		out.UserData = &u
	}
	if c.BillingInfo != nil {
		b := *c.BillingInfo
		out.BillingInfo = &b
	}
	return out
}

// BillingSkipped reports whether the flow reached completion without billing details.
func (c Context) BillingSkipped() bool {
	return c.BillingInfo == nil
}
