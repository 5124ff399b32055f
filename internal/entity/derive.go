package entity

import (
	"time"

	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Stock statuses.
const (
	OutOfStock = "out-of-stock"
	LowStock   = "low-stock"
	InStock    = "in-stock"
)

// Certification statuses.
const (
	CertExpired = "Expired"
	CertDueSoon = "Due Soon"
	CertValid   = "Valid"
)

// Maintenance priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// DefaultCertificationWarning is how far ahead of expiry a certification is
// reported as due soon.
const DefaultCertificationWarning = 90 * 24 * time.Hour

// StockStatus derives the stock level of an inventory item. Missing stock
// counts read as zero.
func StockStatus(r query.Record, _ time.Time) query.Value {
	current := r.Get("currentStock").AsNumber()
	minimum := r.Get("minStock").AsNumber()
	switch {
	case current == 0:
		return query.String(OutOfStock)
	case current <= minimum:
		return query.String(LowStock)
	default:
		return query.String(InStock)
	}
}

// CertificationStatus returns a derivation comparing expiryDate against now.
// A record without a readable expiry has no status.
func CertificationStatus(warning time.Duration) func(query.Record, time.Time) query.Value {
	return func(r query.Record, now time.Time) query.Value {
		expiry, ok := r.Get("expiryDate").AsDate()
		if !ok {
			return query.Null()
		}
		switch {
		case expiry.Before(now):
			return query.String(CertExpired)
		case !expiry.After(now.Add(warning)):
			return query.String(CertDueSoon)
		default:
			return query.String(CertValid)
		}
	}
}

// MaintenancePriority ranks a work order by how close its scheduledDate is.
func MaintenancePriority(r query.Record, now time.Time) query.Value {
	due, ok := r.Get("scheduledDate").AsDate()
	if !ok {
		return query.String(PriorityLow)
	}
	until := due.Sub(now)
	switch {
	case until < 0:
		return query.String(PriorityCritical)
	case until <= 7*24*time.Hour:
		return query.String(PriorityHigh)
	case until <= 30*24*time.Hour:
		return query.String(PriorityMedium)
	default:
		return query.String(PriorityLow)
	}
}
