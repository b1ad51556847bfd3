package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToModelPeriod converts a domain Period to a tstzrange value.
func ToModelPeriod(p domain.Period) pgtype.Range[pgtype.Timestamptz] {
	r := pgtype.Range[pgtype.Timestamptz]{Valid: true}
	r.Lower, r.LowerType = toModelBound(p.Start)
	r.Upper, r.UpperType = toModelBound(p.End)
	return r
}

func toModelBound(b domain.Bound) (pgtype.Timestamptz, pgtype.BoundType) {
	switch {
	case b.Unbounded:
		return pgtype.Timestamptz{}, pgtype.Unbounded
	case b.Inclusive:
		return pgtype.Timestamptz{Time: b.Value, Valid: true}, pgtype.Inclusive
	default:
		return pgtype.Timestamptz{Time: b.Value, Valid: true}, pgtype.Exclusive
	}
}

// ToDomainPeriod converts a tstzrange value to a domain Period. An 'infinity' upper
// bound is read as unbounded.
func ToDomainPeriod(r pgtype.Range[pgtype.Timestamptz]) domain.Period {
	return domain.Period{
		Start: toDomainBound(r.Lower, r.LowerType),
		End:   toDomainBound(r.Upper, r.UpperType),
	}
}

func toDomainBound(t pgtype.Timestamptz, bt pgtype.BoundType) domain.Bound {
	if bt == pgtype.Unbounded || t.InfinityModifier == pgtype.Infinity {
		return domain.Bound{Unbounded: true, Inclusive: true}
	}
	return domain.Bound{Value: t.Time, Inclusive: bt == pgtype.Inclusive}
}

// ToModelPlan converts a domain Plan to its jsonb snapshot.
func ToModelPlan(d domain.Plan) models.Plan {
	return models.Plan{
		ID:      d.ID,
		Title:   d.Title,
		Pricing: models.PlanPricing(d.Pricing),
	}
}

// ToDomainPlan converts a stored plan snapshot to a domain Plan.
func ToDomainPlan(m models.Plan) domain.Plan {
	return domain.Plan{
		ID:      m.ID,
		Title:   m.Title,
		Pricing: domain.PlanPricing(m.Pricing),
	}
}

// ToModelSubscription converts a domain PlatformSubscription to a model PlatformSubscription
func ToModelSubscription(d domain.PlatformSubscription) models.PlatformSubscription {
	return models.PlatformSubscription{
		SubscriptionID: d.ID,
		CollectiveID:   d.CollectiveID,
		Period:         ToModelPeriod(d.Period),
		Plan:           ToModelPlan(d.Plan),
		DeletedAt:      d.DeletedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSubscription converts a model PlatformSubscription to a domain PlatformSubscription
func ToDomainSubscription(m models.PlatformSubscription) domain.PlatformSubscription {
	return domain.PlatformSubscription{
		ID:           m.SubscriptionID,
		CollectiveID: m.CollectiveID,
		Period:       ToDomainPeriod(m.Period),
		Plan:         ToDomainPlan(m.Plan),
		DeletedAt:    m.DeletedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
