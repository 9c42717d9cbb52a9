package authz

import "fmt"

// RoleSeed defines a built-in role.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds is the role matrix seeded at startup. Finance owns money
// movement, curation owns the designer and catalog review queue.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "curation",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/designers", Action: "GET"},
				{Object: "/admin/designers/:id", Action: "GET"},
				{Object: "/admin/designers/:id/approve", Action: "POST"},
				{Object: "/admin/designers/:id/reject", Action: "POST"},
				{Object: "/admin/products", Action: "GET"},
				{Object: "/admin/products/:id", Action: "GET"},
			},
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/withdrawals", Action: "GET"},
				{Object: "/admin/withdrawals/:id", Action: "GET"},
				{Object: "/admin/withdrawals/:id/review", Action: "POST"},
				{Object: "/admin/wallets", Action: "GET"},
				{Object: "/admin/wallets/:designer_id", Action: "GET"},
				{Object: "/admin/wallets/:designer_id/reconcile", Action: "POST"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/orders/:id/settle", Action: "POST"},
				{Object: "/admin/orders/expire", Action: "POST"},
				{Object: "/admin/settings/:key", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles seeds the built-in roles and their policies.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
