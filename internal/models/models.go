package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitPercentage SplitType = "PERCENTAGE"
	SplitCustom     SplitType = "CUSTOM"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Avatar    *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Circle struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Color       *string   `db:"color" json:"color,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CircleMember struct {
	ID       string    `db:"id" json:"id"`
	CircleID string    `db:"circle_id" json:"circle_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Role     Role      `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type Expense struct {
	ID          string          `db:"id" json:"id"`
	CircleID    string          `db:"circle_id" json:"circle_id"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
	Name        string          `db:"name" json:"name"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	Category    *string         `db:"category" json:"category,omitempty"`
	Description *string         `db:"description" json:"description,omitempty"`
	SplitType   SplitType       `db:"split_type" json:"split_type"`
	IsSettled   bool            `db:"is_settled" json:"is_settled"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Obligation struct {
	ID         string           `db:"id" json:"id"`
	ExpenseID  string           `db:"expense_id" json:"expense_id"`
	UserID     string           `db:"user_id" json:"user_id"`
	Amount     decimal.Decimal  `db:"amount" json:"amount"`
	Percentage *decimal.Decimal `db:"percentage" json:"percentage,omitempty"`
	IsPaid     bool             `db:"is_paid" json:"is_paid"`
	PaidAt     *time.Time       `db:"paid_at" json:"paid_at,omitempty"`
}

type BankAccount struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Institution       string    `db:"institution" json:"institution"`
	AccountName       string    `db:"account_name" json:"account_name"`
	AccountType       string    `db:"account_type" json:"account_type"`
	Mask              string    `db:"mask" json:"mask"`
	AccessToken       string    `db:"access_token" json:"-"`
	ExternalItemID    string    `db:"external_item_id" json:"external_item_id"`
	ExternalAccountID string    `db:"external_account_id" json:"external_account_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Friendship struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	FriendID  string    `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "PENDING"
	FriendRequestAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestDeclined FriendRequestStatus = "DECLINED"
)

type FriendRequest struct {
	ID         string              `db:"id" json:"id"`
	SenderID   string              `db:"sender_id" json:"sender_id"`
	ReceiverID string              `db:"receiver_id" json:"receiver_id"`
	Status     FriendRequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
}
