package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
)

// Audit columns have the same shape on both sides, so a struct conversion is enough.

func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields(d)
}

func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields(m)
}
