package dto

import (
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGroupRequest defines the data needed to create a top-level account group.
type CreateGroupRequest struct {
	Name        string             `json:"name" binding:"required"`
	Code        string             `json:"code" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

// CreateSubGroupRequest defines the data needed to create a sub-group under a group.
type CreateSubGroupRequest struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required"`
	ParentGroupID string `json:"parentGroupID" binding:"required"`
}

// CreateLedgerRequest defines the data needed to create a postable leaf account.
type CreateLedgerRequest struct {
	Name             string             `json:"name" binding:"required"`
	Code             string             `json:"code" binding:"required"`
	ParentSubGroupID string             `json:"parentSubGroupID" binding:"required"`
	SubType          string             `json:"subType"`
	OpeningBalance   decimal.Decimal    `json:"openingBalance"`
	BalanceType      domain.BalanceType `json:"balanceType" binding:"required,oneof=DEBIT CREDIT"`
}

// UpdateLedgerRequest defines the data allowed for updating a ledger account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateLedgerRequest struct {
	Name     *string `json:"name"`
	SubType  *string `json:"subType"`
	IsActive *bool   `json:"isActive"`
}

// AccountResponse mirrors domain.Account for API responses.
type AccountResponse struct {
	AccountID       string              `json:"accountID"`
	Code            string              `json:"code"`
	Name            string              `json:"name"`
	Level           domain.AccountLevel `json:"level"`
	ParentAccountID *string             `json:"parentAccountID,omitempty"`
	AccountType     domain.AccountType  `json:"accountType"`
	SubType         string              `json:"subType"`
	BalanceType     domain.BalanceType  `json:"balanceType"`
	OpeningBalance  decimal.Decimal     `json:"openingBalance"`
	Balance         decimal.Decimal     `json:"balance"`
	IsGroup         bool                `json:"isGroup"`
	IsActive        bool                `json:"isActive"`
	CreatedAt       time.Time           `json:"createdAt"`
	CreatedBy       string              `json:"createdBy"`
}

// HierarchyNodeResponse is one node in the nested chart-of-accounts view.
// The balance on a non-leaf node is the live rollup of its descendant ledgers.
type HierarchyNodeResponse struct {
	AccountResponse
	RollupBalance decimal.Decimal         `json:"rollupBalance"`
	Children      []HierarchyNodeResponse `json:"children,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		Level:           acc.Level,
		ParentAccountID: acc.ParentAccountID,
		AccountType:     acc.AccountType,
		SubType:         acc.SubType,
		BalanceType:     acc.BalanceType,
		OpeningBalance:  acc.OpeningBalance,
		Balance:         acc.Balance,
		IsGroup:         acc.IsGroup(),
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

// ToHierarchyResponse converts the nested account tree.
func ToHierarchyResponse(nodes []*domain.AccountNode) []HierarchyNodeResponse {
	responses := make([]HierarchyNodeResponse, len(nodes))
	for i, node := range nodes {
		responses[i] = HierarchyNodeResponse{
			AccountResponse: ToAccountResponse(&node.Account),
			RollupBalance:   node.RollupBalance,
			Children:        ToHierarchyResponse(node.Children),
		}
	}
	return responses
}
