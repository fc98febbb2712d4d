package constants

// Reserved field names that extension fields may never shadow. These are
// either storage columns or names the executor writes into directly.
var reservedFieldNames = map[string]bool{
	"id":         true,
	"tenant_id":  true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
	"is_active":  true,
	"is_deleted": true,
	"extensions": true,
}

// IsReservedFieldName reports whether name collides with a system field.
func IsReservedFieldName(name string) bool {
	return reservedFieldNames[name]
}
