package apierrors

import (
	"net/http"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/repo"
)

const (
	TenantNotFound      = "TENANT_NOT_FOUND"
	TenantUnavailable   = "TENANT_DATABASE_UNAVAILABLE"
	InvalidTenantData   = "INVALID_TENANT_DATA"
	ResourceNotFound    = "RESOURCE_NOT_FOUND"
	UniqueError         = "UNIQUE_ERROR"
	LastHostname        = "LAST_HOSTNAME"
	UnknownReference    = "UNKNOWN_REFERENCE"
	GetResource         = "GET_RESOURCE"
	tenantNotFoundText  = "No website is configured for this host"
	unavailableText     = "The website database is temporarily unavailable"
	invalidTenantText   = "Invalid tenant data"
	uniqueText          = "Resource already exists"
	unknownReferenceTxt = "Referenced resource does not exist"
)

// highPrio wins over every other mapping whatever else the chain carries.
var highPrio = []errs.Mapping[*APIError]{
	{
		Chain: []error{errs.ErrTenantDatabaseUnavailable},
		Exposed: &APIError{
			Code:    TenantUnavailable,
			Message: unavailableText,
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		Chain: []error{errs.ErrUnresolvedTenant},
		Exposed: &APIError{
			Code:    TenantNotFound,
			Message: tenantNotFoundText,
			Status:  http.StatusNotFound,
		},
	},
}

var mappings = []errs.Mapping[*APIError]{
	{
		Chain: []error{errs.ErrInvalidTenantData},
		Exposed: &APIError{
			Code:    InvalidTenantData,
			Message: invalidTenantText,
			Status:  http.StatusBadRequest,
		},
		ContextGetter: func(err error) map[string]any {
			return map[string]any{"reason": err.Error()}
		},
	},
	{
		Chain: []error{repo.ErrNotFound},
		Exposed: &APIError{
			Code:    ResourceNotFound,
			Message: "The requested resource was not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		Chain: []error{repo.ErrUniqueConstraint},
		Exposed: &APIError{
			Code:    UniqueError,
			Message: uniqueText,
			Status:  http.StatusConflict,
		},
	},
	{
		Chain: []error{repo.ErrLastHostname},
		Exposed: &APIError{
			Code:    LastHostname,
			Message: "Cannot delete the last hostname of an active website",
			Status:  http.StatusConflict,
		},
	},
	{
		Chain: []error{repo.ErrUnknownTenant},
		Exposed: &APIError{Code: UnknownReference, Message: unknownReferenceTxt, Status: http.StatusUnprocessableEntity},
	},
	{
		Chain: []error{repo.ErrUnknownWebsite},
		Exposed: &APIError{Code: UnknownReference, Message: unknownReferenceTxt, Status: http.StatusUnprocessableEntity},
	},
	{
		Chain: []error{repo.ErrUnknownRedirect},
		Exposed: &APIError{Code: UnknownReference, Message: unknownReferenceTxt, Status: http.StatusUnprocessableEntity},
	},
	{
		Chain: []error{repo.ErrGetResource},
		Exposed: &APIError{
			Code:    GetResource,
			Message: "The requested resource could not be loaded",
			Status:  http.StatusInternalServerError,
		},
	},
}

var APIErrorMapper = errs.NewMapper(mappings, highPrio)
