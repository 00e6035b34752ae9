package model

import "encoding/json"

// EventTypeCopyTrade is the event type that triggers a submission.
const EventTypeCopyTrade = "copy_trade"

// FeedEvent is a message delivered by the bot backend event feed.
type FeedEvent struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// CopyTradeEvent is the data of a copy_trade event.
type CopyTradeEvent struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight,omitempty"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports,omitempty"`
	UserID                    string `json:"userId,omitempty"`
}
