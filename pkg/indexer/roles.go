package indexer

import (
	"context"
	"slices"

	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// RoleMetadata indexes the roles an admin policy grants.
var RoleMetadata = Descriptor{Name: "role_metadata", New: newRoleMetadataIndexer}

// registrationRoles may register objects governed by the policy.
var registrationRoles = []string{"dor-apo-manager", "dor-apo-depositor"}

type roleMetadataIndexer struct {
	roles []model.Role
}

func newRoleMetadataIndexer(d Deps) FieldIndexer {
	return &roleMetadataIndexer{roles: d.Record.Administrative.Roles}
}

// Fields emits apo_role_<name>_ssim per role, members rendered as
// "type:identifier", plus everyone allowed to register.
func (i *roleMetadataIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	var register []string
	for _, role := range i.roles {
		if role.Name == "" {
			continue
		}
		field := "apo_role_" + role.Name + "_ssim"
		members := resolve.AppendUnique(doc.Strings(field), memberNames(role.Members)...)
		doc.SetStrings(field, members)
		if slices.Contains(registrationRoles, role.Name) {
			register = resolve.AppendUnique(register, memberNames(role.Members)...)
		}
	}
	doc.SetStrings("apo_register_permissions_ssim", register)
	return doc, nil
}

func memberNames(members []model.RoleMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m.Type == "" || m.Identifier == "" {
			continue
		}
		out = append(out, m.Type+":"+m.Identifier)
	}
	return out
}
