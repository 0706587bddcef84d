// Package privacy authorizes statements before they reach the database.
//
// A Policy is a strata.Hook evaluated right before execution. It holds
// read rules, evaluated for selects, and write rules, evaluated for
// inserts, upserts, updates and deletes. Entity types install it with
// their other hooks:
//
//	var postPolicy = privacy.Policy{
//		Write: []privacy.Rule{
//			privacy.DenyIfNoViewer(),
//			privacy.HasRole("admin"),
//			privacy.IsOwner("author_id"),
//			privacy.AlwaysDenyRule(),
//		},
//	}
//
//	func (*Post) Hooks() []strata.Hook { return []strata.Hook{postPolicy} }
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: rejects the statement and stops evaluation
//   - Skip (or nil): continues with the next rule
//
// When every rule skips, the statement is allowed. End a list with
// AlwaysDenyRule to deny by default.
//
// A denied statement fails with a *strata.HookError wrapping the
// decision, so errors.Is(err, privacy.Deny) reports it.
//
// # Stored Rows
//
// IsOwner and TenantRule judge the rows a statement touches as they are
// stored, not only the entity passed in. Request.Stored loads them with
// strata.Affected on the statement's executor, so an update of another
// user's row is not allowed by naming oneself as its owner. Run the
// check and the write in one transaction to keep the loaded rows
// current:
//
//	err := strata.WithTx(ctx, drv, func(tx dialect.Tx) error {
//		return strata.Update(ctx, tx, post)
//	})
//
// A decision attached to the context with DecisionContext overrides
// every policy, which lets trusted code paths bypass them:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
package privacy
