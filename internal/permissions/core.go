package permissions

// Core permission IDs for the admin panel.
const (
	PanelView   = "panel.view"
	PanelUpdate = "panel.update"
	AuditView   = "audit.view"
)

func init() {
	MustRegister(&Permission{
		ID:          PanelView,
		Module:      "panel",
		Description: "View the store-validation summary",
	})
	MustRegister(&Permission{
		ID:          PanelUpdate,
		Module:      "panel",
		Implies:     []string{PanelView},
		Description: "Update the store-validation summary",
	})
	MustRegister(&Permission{
		ID:          AuditView,
		Module:      "audit",
		Description: "Browse the audit trail",
	})
}
