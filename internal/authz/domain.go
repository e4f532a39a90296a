package authz

// Role classifies a user as administrator or resident.
type Role string

const (
	// RoleSindico is the condominium administrator.
	RoleSindico Role = "sindico"
	// RoleMorador is a regular resident and the least-privileged role.
	RoleMorador Role = "morador"
)

// DefaultRole is the single fallback applied to unknown, missing or
// unresolvable roles. Every lookup funnels through Normalize so the
// least-privilege default lives in exactly one place.
const DefaultRole = RoleMorador

// Normalize maps arbitrary role tags onto a known Role.
func Normalize(role Role) Role {
	switch role {
	case RoleSindico, RoleMorador:
		return role
	default:
		return DefaultRole
	}
}

// Capability names one class of privileged action.
type Capability string

// Reservation capabilities.
const (
	CapManageReservations  Capability = "canManageReservations"
	CapApproveReservations Capability = "canApproveReservations"
	CapRejectReservations  Capability = "canRejectReservations"
	CapViewAllReservations Capability = "canViewAllReservations"
)

// Voting capabilities.
const (
	CapCreateVotings     Capability = "canCreateVotings"
	CapManageVotings     Capability = "canManageVotings"
	CapViewVotingResults Capability = "canViewVotingResults"
)

// Communication capabilities.
const (
	CapSendCommunications   Capability = "canSendCommunications"
	CapManageCommunications Capability = "canManageCommunications"
	CapDeleteCommunications Capability = "canDeleteCommunications"
)

// Reminder capabilities.
const (
	CapCreateReminders Capability = "canCreateReminders"
	CapManageReminders Capability = "canManageReminders"
	CapDeleteReminders Capability = "canDeleteReminders"
)

// User management capabilities.
const (
	CapManageUsers  Capability = "canManageUsers"
	CapViewUserList Capability = "canViewUserList"
)

// Reporting capabilities.
const (
	CapViewReports     Capability = "canViewReports"
	CapGenerateReports Capability = "canGenerateReports"
)

// Settings capabilities.
const (
	CapManageSettings     Capability = "canManageSettings"
	CapViewSystemSettings Capability = "canViewSystemSettings"
)

// Accounts capabilities.
const (
	CapManageAccounts       Capability = "canManageAccounts"
	CapViewFinancialReports Capability = "canViewFinancialReports"
)

// Table maps every capability to granted/denied for one role.
type Table map[Capability]bool

// allCapabilities fixes the rectangular key set shared by every role table.
var allCapabilities = []Capability{
	CapManageReservations,
	CapApproveReservations,
	CapRejectReservations,
	CapViewAllReservations,
	CapCreateVotings,
	CapManageVotings,
	CapViewVotingResults,
	CapSendCommunications,
	CapManageCommunications,
	CapDeleteCommunications,
	CapCreateReminders,
	CapManageReminders,
	CapDeleteReminders,
	CapManageUsers,
	CapViewUserList,
	CapViewReports,
	CapGenerateReports,
	CapManageSettings,
	CapViewSystemSettings,
	CapManageAccounts,
	CapViewFinancialReports,
}

// moradorGrants lists the few capabilities residents hold. Everything absent
// from this set is denied; the tables are materialised rectangular at init.
var moradorGrants = map[Capability]bool{
	CapViewVotingResults: true,
}

func buildTable(grants map[Capability]bool) Table {
	t := make(Table, len(allCapabilities))
	for _, c := range allCapabilities {
		t[c] = grants[c]
	}
	return t
}

func buildFullTable() Table {
	t := make(Table, len(allCapabilities))
	for _, c := range allCapabilities {
		t[c] = true
	}
	return t
}

// permissionTables is the static role → capability mapping, built once at
// process start and never mutated afterwards.
var permissionTables = map[Role]Table{
	RoleSindico: buildFullTable(),
	RoleMorador: buildTable(moradorGrants),
}

// Capabilities returns the fixed, ordered capability key set.
func Capabilities() []Capability {
	out := make([]Capability, len(allCapabilities))
	copy(out, allCapabilities)
	return out
}
