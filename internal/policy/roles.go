package policy

import (
	"context"

	"github.com/diewo77/partner-admin/internal/gate"
	"github.com/diewo77/partner-admin/internal/models"
)

// Resource type names used in permissions and route guards.
const (
	ResourcePartner     = "partner"
	ResourceProduct     = "product"
	ResourceMaterial    = "material"
	ResourceRequest     = "request"
	ResourceRequestOwn  = "request_own"
	ResourceSupply      = "supply"
	ResourceComposition = "composition"
	ResourceUser        = "user"
)

// ActionCalc is the composition-specific action of running the
// required-material computation.
const ActionCalc gate.Action = "calc"

// roleProfiles encode the canonical role-to-route matrix. The three legacy
// route modules disagreed on a few read permissions; the most permissive
// reading is taken here and is the single source of truth.
var roleProfiles = map[models.Role]*gate.StaticProfile{
	models.RoleManager: gate.NewStaticProfile(string(models.RoleManager),
		gate.NewPermission(ResourcePartner, gate.ActionList),
		gate.NewPermission(ResourcePartner, gate.ActionView),
		gate.NewPermission(ResourcePartner, gate.ActionCreate),
		gate.NewPermission(ResourcePartner, gate.ActionDelete),
		gate.NewPermission(ResourceProduct, gate.WildcardAll),
		gate.NewPermission(ResourceMaterial, gate.ActionList),
		gate.NewPermission(ResourceRequest, gate.ActionList),
		gate.NewPermission(ResourceRequest, gate.ActionView),
		gate.NewPermission(ResourceRequest, gate.ActionCreate),
		gate.NewPermission(ResourceRequest, gate.ActionUpdate),
		gate.NewPermission(ResourceSupply, gate.ActionList),
		gate.NewPermission(ResourceSupply, gate.ActionCreate),
		gate.NewPermission(ResourceComposition, gate.WildcardAll),
		gate.NewPermission(ResourceUser, gate.ActionList),
		gate.NewPermission(ResourceUser, gate.ActionCreate),
	),
	models.RoleAnalyst: gate.NewStaticProfile(string(models.RoleAnalyst),
		gate.NewPermission(ResourcePartner, gate.ActionList),
		gate.NewPermission(ResourcePartner, gate.ActionView),
		gate.NewPermission(ResourceMaterial, gate.ActionList),
		gate.NewPermission(ResourceComposition, gate.ActionList),
		gate.NewPermission(ResourceComposition, ActionCalc),
	),
	models.RolePartner: gate.NewStaticProfile(string(models.RolePartner),
		gate.NewPermission(ResourceProduct, gate.ActionList),
		gate.NewPermission(ResourceRequestOwn, gate.ActionList),
		gate.NewPermission(ResourceComposition, gate.ActionList),
	),
}

// roleResolver maps a principal to the static profile of its role.
// Deliberately storage-free: denying a request never queries the database.
type roleResolver struct{}

func (roleResolver) Resolve(_ context.Context, u *models.User) (gate.Profile, error) {
	if u == nil {
		return nil, nil
	}
	p, ok := roleProfiles[u.Role]
	if !ok {
		return nil, nil
	}
	return p, nil
}

// NewRoleGate builds the application gate over the static role profiles.
func NewRoleGate() *gate.Gate[*models.User] {
	return gate.New[*models.User](roleResolver{})
}
