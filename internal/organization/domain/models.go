// Package domain contains persistence models for organizations and their credit balance.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrganizationType distinguishes internal teams from metered client tenants.
type OrganizationType string

const (
	OrganizationTypeInternal     OrganizationType = "INTERNAL"
	OrganizationTypeClient       OrganizationType = "CLIENT"
	OrganizationTypeMasterClient OrganizationType = "MASTER_CLIENT"
	OrganizationTypeSubClient    OrganizationType = "SUB_CLIENT"
)

type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "ACTIVE"
	OrganizationStatusSuspended OrganizationStatus = "SUSPENDED"
)

// Organization represents a tenant. Credits live on the organization row so
// billing checks are a single read.
type Organization struct {
	ID        snowflake.ID       `gorm:"primaryKey" json:"id"`
	Name      string             `gorm:"type:text;not null" json:"name"`
	Type      OrganizationType   `gorm:"type:text;not null;default:'CLIENT'" json:"type"`
	Status    OrganizationStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	Credits   int64              `gorm:"not null;default:0" json:"credits"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Package is a purchasable credit plan.
type Package struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:text;not null" json:"name"`
	MonthlyCredits int64        `gorm:"not null" json:"monthly_credits"`
	PriceCents     int64        `gorm:"not null;default:0" json:"price_cents"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Package) TableName() string { return "packages" }

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

// Subscription is the single active plan for an organization. Assigning a new
// package replaces the row rather than mutating it.
type Subscription struct {
	ID               snowflake.ID       `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID       `gorm:"not null;uniqueIndex:ux_subscriptions_org" json:"org_id"`
	PackageID        snowflake.ID       `gorm:"not null;index" json:"package_id"`
	Status           SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	RemainingCredits int64              `gorm:"not null" json:"remaining_credits"`
	EndDate          time.Time          `gorm:"not null" json:"end_date"`
	CreatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
