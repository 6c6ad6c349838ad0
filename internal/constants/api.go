package constants

const (
	APIName = "TENANCY"

	DefaultConfigPath1 = "/etc/tenancy"
	DefaultConfigPath2 = "$HOME/.tenancy"
)

// Path tags registered for every website's storage root.
const (
	PathRoot   = "root"
	PathMedia  = "media"
	PathCache  = "cache"
	PathViews  = "views"
	PathConfig = "config"
)

// ViewTenantKey is the key under which the tenant view is shared with templates.
const ViewTenantKey = "tenant"
