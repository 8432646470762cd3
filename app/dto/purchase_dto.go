package dto

// SignatureDTO is the caller-supplied attestation attached to a quantity
// commitment. It is stored verbatim and never verified.
type SignatureDTO struct {
	ID      string `json:"id" validate:"required,max=255"`
	Name    string `json:"name" validate:"required,max=255"`
	Contact string `json:"contact" validate:"required,max=255"`
}

// CreatePurchaseRequest represents the request to propose a collective purchase.
// The proposing company commits its own quantity at creation time.
type CreatePurchaseRequest struct {
	UserID         uint         `json:"-"`
	ProductName    string       `json:"product_name" validate:"required,max=255"`
	Description    string       `json:"description" validate:"required"`
	TargetQuantity int64        `json:"target_quantity" validate:"required,gt=0"`
	Quantity       int64        `json:"quantity" validate:"required,gt=0"`
	Signature      SignatureDTO `json:"signature" validate:"required"`
}

// CreatePurchaseResponse represents the response after proposing a purchase
type CreatePurchaseResponse struct {
	Message        string         `json:"message"`
	Purchase       PurchaseDTO    `json:"purchase"`
	Participant    ParticipantDTO `json:"participant"`
	TotalConfirmed int64          `json:"total_confirmed"`
}

// JoinPurchaseRequest represents the request to join an open purchase
type JoinPurchaseRequest struct {
	PurchaseUUID string       `json:"-"`
	UserID       uint         `json:"-"`
	Quantity     int64        `json:"quantity" validate:"required,gt=0"`
	Signature    SignatureDTO `json:"signature" validate:"required"`
}

// JoinPurchaseResponse represents the response after joining a purchase.
// AcceptedQuantity may be lower than the requested quantity when the request
// exceeded remaining capacity.
type JoinPurchaseResponse struct {
	Message           string      `json:"message"`
	Purchase          PurchaseDTO `json:"purchase"`
	AcceptedQuantity  int64       `json:"accepted_quantity"`
	RequestedQuantity int64       `json:"requested_quantity"`
	RemainingQuantity int64       `json:"remaining_quantity"`
}

// CancelParticipationRequest represents the request to withdraw from a purchase
type CancelParticipationRequest struct {
	PurchaseUUID string `json:"-"`
	UserID       uint   `json:"-"`
}

// CancelParticipationResponse represents the response after cancelling
type CancelParticipationResponse struct {
	Message           string `json:"message"`
	RemainingQuantity int64  `json:"remaining_quantity"`
}

// PurchaseDTO represents a collective purchase for API responses
type PurchaseDTO struct {
	ID                uint             `json:"id"`
	UUID              string           `json:"uuid"`
	CompanyID         uint             `json:"company_id"`
	CompanyTradeName  string           `json:"company_trade_name,omitempty"`
	ProductName       string           `json:"product_name"`
	Description       string           `json:"description"`
	TargetQuantity    int64            `json:"target_quantity"`
	ConfirmedQuantity int64            `json:"confirmed_quantity"`
	RemainingQuantity int64            `json:"remaining_quantity"`
	Status            string           `json:"status"`
	ClosedAt          *string          `json:"closed_at,omitempty"`
	CreatedAt         string           `json:"created_at"`
	Participants      []ParticipantDTO `json:"participants,omitempty"`
}

// ParticipantDTO represents a participant commitment for API responses
type ParticipantDTO struct {
	ID               uint   `json:"id"`
	UUID             string `json:"uuid"`
	CompanyID        uint   `json:"company_id"`
	CompanyTradeName string `json:"company_trade_name,omitempty"`
	Quantity         int64  `json:"quantity"`
	Status           string `json:"status"`
	SignatureID      string `json:"signature_id"`
	SignatureName    string `json:"signature_name"`
	SignatureContact string `json:"signature_contact"`
	CreatedAt        string `json:"created_at"`
}

// ListMyPurchasesResponse lists purchases proposed by the caller's company
type ListMyPurchasesResponse struct {
	Purchases []PurchaseDTO `json:"purchases"`
}

// ListMarketplaceResponse lists open purchases from other companies
type ListMarketplaceResponse struct {
	Purchases []PurchaseDTO `json:"purchases"`
}

// PurchaseHistoryItemDTO is one row of a company's participation history,
// covering both active and cancelled commitments
type PurchaseHistoryItemDTO struct {
	ParticipantUUID string `json:"participant_uuid"`
	PurchaseUUID    string `json:"purchase_uuid"`
	ProductName     string `json:"product_name"`
	TargetQuantity  int64  `json:"target_quantity"`
	Quantity        int64  `json:"quantity"`
	PurchaseStatus  string `json:"purchase_status"`
	Status          string `json:"status"`
	JoinedAt        string `json:"joined_at"`
}

// PurchaseHistoryResponse represents the company's participation history
type PurchaseHistoryResponse struct {
	History []PurchaseHistoryItemDTO `json:"history"`
}

// FinalDocumentParticipantDTO is one settlement row of a closed purchase
type FinalDocumentParticipantDTO struct {
	CompanyUUID      string `json:"company_uuid"`
	TradeName        string `json:"trade_name"`
	TaxNumber        string `json:"tax_number"`
	Sector           string `json:"sector"`
	Quantity         int64  `json:"quantity"`
	SignatureID      string `json:"signature_id"`
	SignatureName    string `json:"signature_name"`
	SignatureContact string `json:"signature_contact"`
	JoinedAt         string `json:"joined_at"`
}

// FinalDocumentDataResponse carries everything needed to render the final
// document of a closed purchase. Participants appear in join order.
type FinalDocumentDataResponse struct {
	Purchase      PurchaseDTO                   `json:"purchase"`
	Participants  []FinalDocumentParticipantDTO `json:"participants"`
	TotalQuantity int64                         `json:"total_quantity"`
}

// ReputationEventDTO is one reputation-affecting event
type ReputationEventDTO struct {
	UUID         string  `json:"uuid"`
	EventType    string  `json:"event_type"`
	UserID       uint    `json:"user_id"`
	PurchaseUUID *string `json:"purchase_uuid,omitempty"`
	Details      *string `json:"details,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ReputationResponse represents a company's derived reputation
type ReputationResponse struct {
	CompanyUUID    string               `json:"company_uuid"`
	Score          int64                `json:"score"`
	ConfirmedCount int64                `json:"confirmed_count"`
	CancelledCount int64                `json:"cancelled_count"`
	Events         []ReputationEventDTO `json:"events"`
}
