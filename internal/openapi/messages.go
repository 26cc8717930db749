package openapi

import (
	"encoding/json"
	"fmt"
)

// PayloadKind discriminates every message crossing the venue connection.
// Values mirror the venue's ProtoOA payload-type numbering so captures from
// the official client decode unchanged.
type PayloadKind int

const (
	KindHeartbeat          PayloadKind = 51
	KindApplicationAuthReq PayloadKind = 2100
	KindApplicationAuthRes PayloadKind = 2101
	KindAccountAuthReq     PayloadKind = 2102
	KindAccountAuthRes     PayloadKind = 2103
	KindAccountListReq     PayloadKind = 2149
	KindAccountListRes     PayloadKind = 2150
	KindAccountLogoutReq   PayloadKind = 2162
	KindAccountLogoutRes   PayloadKind = 2163
	KindSubscribeSpotsRes  PayloadKind = 2128
	KindDealListReq        PayloadKind = 2133
	KindDealListRes        PayloadKind = 2134
	KindExecutionEvent     PayloadKind = 2126
	KindPositionPnLReq     PayloadKind = 2187
	KindPositionPnLRes     PayloadKind = 2188
)

func (k PayloadKind) String() string {
	switch k {
	case KindHeartbeat:
		return "heartbeat"
	case KindApplicationAuthReq:
		return "application_auth_req"
	case KindApplicationAuthRes:
		return "application_auth_res"
	case KindAccountAuthReq:
		return "account_auth_req"
	case KindAccountAuthRes:
		return "account_auth_res"
	case KindAccountListReq:
		return "account_list_req"
	case KindAccountListRes:
		return "account_list_res"
	case KindAccountLogoutReq:
		return "account_logout_req"
	case KindAccountLogoutRes:
		return "account_logout_res"
	case KindSubscribeSpotsRes:
		return "subscribe_spots_res"
	case KindDealListReq:
		return "deal_list_req"
	case KindDealListRes:
		return "deal_list_res"
	case KindExecutionEvent:
		return "execution_event"
	case KindPositionPnLReq:
		return "position_pnl_req"
	case KindPositionPnLRes:
		return "position_pnl_res"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Envelope wraps every wire message with its discriminant and the
// correlation token echoed back on responses.
type Envelope struct {
	Kind        PayloadKind     `json:"payloadType"`
	ClientMsgID string          `json:"clientMsgId,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the envelope payload into the given typed body.
func (e Envelope) Decode(body any) error {
	if err := json.Unmarshal(e.Payload, body); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// Marshal builds an envelope from a typed request body.
func Marshal(kind PayloadKind, clientMsgID string, body any) (Envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Envelope{Kind: kind, ClientMsgID: clientMsgID, Payload: raw}, nil
}

// ApplicationAuthReq authenticates the application credentials.
type ApplicationAuthReq struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type ApplicationAuthRes struct{}

// AccountAuthReq binds the connection to one trading account.
type AccountAuthReq struct {
	AccountID   int64  `json:"ctidTraderAccountId"`
	AccessToken string `json:"accessToken"`
}

type AccountAuthRes struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

type AccountListReq struct {
	AccessToken string `json:"accessToken"`
}

// AccountListEntry is one account reachable with the access token.
type AccountListEntry struct {
	AccountID int64 `json:"ctidTraderAccountId"`
	IsLive    bool  `json:"isLive"`
}

type AccountListRes struct {
	Accounts []AccountListEntry `json:"ctidTraderAccount"`
}

type AccountLogoutReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

// PositionPnLReq asks for the unrealized PnL of every open position.
type PositionPnLReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

// PositionPnL is one open position's unrealized PnL as scaled integers.
type PositionPnL struct {
	PositionID int64 `json:"positionId"`
	GrossPnL   int64 `json:"grossUnrealizedPnL"`
	NetPnL     int64 `json:"netUnrealizedPnL"`
}

// PositionPnLRes carries the full snapshot plus the shared money-digit
// count used to descale every PnL field.
type PositionPnLRes struct {
	AccountID   int64         `json:"ctidTraderAccountId"`
	Positions   []PositionPnL `json:"positionUnrealizedPnL"`
	MoneyDigits uint32        `json:"moneyDigits"`
}

// DealListReq requests deals executed inside a half-open window. The venue
// caps a single response; MaxRows keeps us under that cap.
type DealListReq struct {
	AccountID     int64 `json:"ctidTraderAccountId"`
	FromTimestamp int64 `json:"fromTimestamp,omitempty"` // unix millis, inclusive
	ToTimestamp   int64 `json:"toTimestamp,omitempty"`   // unix millis, exclusive
	MaxRows       int32 `json:"maxRows,omitempty"`
}

type DealListRes struct {
	AccountID int64  `json:"ctidTraderAccountId"`
	Deals     []Deal `json:"deal"`
}

// TradeSide is the venue's buy/sell enum.
type TradeSide int32

const (
	SideBuy  TradeSide = 1
	SideSell TradeSide = 2
)

func (s TradeSide) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "n/a"
	}
}

// ClosePositionDetail is present only on deals that closed (part of) a
// position. All monetary fields are scaled by MoneyDigits.
type ClosePositionDetail struct {
	EntryPrice  float64 `json:"entryPrice"`
	GrossProfit int64   `json:"grossProfit"`
	Swap        int64   `json:"swap"`
	Commission  int64   `json:"commission"`
	Balance     int64   `json:"balance"`
	MoneyDigits uint32  `json:"moneyDigits"`
}

// Deal is one trade execution record, opening or closing a position.
type Deal struct {
	DealID             int64                `json:"dealId"`
	PositionID         int64                `json:"positionId"`
	SymbolID           int64                `json:"symbolId"`
	TradeSide          TradeSide            `json:"tradeSide"`
	Volume             int64                `json:"volume"` // scaled, see report.Catalog
	ExecutionPrice     float64              `json:"executionPrice,omitempty"`
	ExecutionTimestamp int64                `json:"executionTimestamp"` // unix millis
	MoneyDigits        uint32               `json:"moneyDigits"`
	CloseDetail        *ClosePositionDetail `json:"closePositionDetail,omitempty"`
}

// ExecutionType values we care about; everything else is ignored.
type ExecutionType int32

const ExecutionOrderFilled ExecutionType = 3

// PositionStatus classifies what an execution did to its position.
type PositionStatus int32

const (
	PositionOpened       PositionStatus = 1
	PositionClosedAuto   PositionStatus = 2
	PositionClosedManual PositionStatus = 3
)

type ExecutionPosition struct {
	PositionID int64          `json:"positionId"`
	Status     PositionStatus `json:"positionStatus"`
}

// ExecutionEvent is pushed by the venue on every order lifecycle change.
type ExecutionEvent struct {
	AccountID     int64             `json:"ctidTraderAccountId"`
	ExecutionType ExecutionType     `json:"executionType"`
	Position      ExecutionPosition `json:"position"`
	Deal          Deal              `json:"deal"`
}
