// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange runs one user-message/bot-reply cycle against the chat API.
package exchange

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/store"
)

// FallbackMessage is shown as the bot reply when an exchange fails.
const FallbackMessage = "I'm sorry, I'm having trouble connecting to the server right now. Please try again in a moment."

// ChatClient sends one chat request. *api.Client implements it.
type ChatClient interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Outcome describes a finished Send.
type Outcome struct {
	// Sent is false when the input was blank or the send was dropped while
	// waiting for a previous exchange.
	Sent bool

	// Reply is the bot message appended to the thread. On failure it holds
	// FallbackMessage.
	Reply model.Message

	// ConversationID is the ID returned by the chat API on success.
	ConversationID string

	// Err is the recovered failure, if any. It has already been turned into
	// the fallback reply.
	Err error
}

// OK reports whether the exchange reached the API and got a reply.
func (o Outcome) OK() bool {
	return o.Sent && o.Err == nil
}

// Exchange sends user messages and records replies.
type Exchange struct {
	store  *store.Store
	client ChatClient
	now    func() time.Time

	// slot holds a token while an exchange is in flight.
	slot chan struct{}
}

// New creates an exchange writing to s and talking to client.
func New(s *store.Store, client ChatClient) *Exchange {
	return &Exchange{
		store:  s,
		client: client,
		now:    time.Now,
		slot:   make(chan struct{}, 1),
	}
}

// WithClock replaces the time source used for message timestamps.
func (e *Exchange) WithClock(now func() time.Time) *Exchange {
	if now != nil {
		e.now = now
	}
	return e
}

// Busy reports whether an exchange is in flight.
func (e *Exchange) Busy() bool {
	return len(e.slot) > 0
}

// Send runs one exchange for text.
//
// Blank text is ignored without any state change. If another exchange is in
// flight Send waits for it; if ctx ends while waiting the send is dropped and
// nothing changes. Otherwise, in order: the pending input is cleared, loading
// is set, the user message is appended, exactly one request is made, exactly
// one bot message is appended and loading is cleared. Only a successful reply
// updates the current conversation and the saved list.
func (e *Exchange) Send(ctx context.Context, text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}
	}
	defer func() { <-e.slot }()

	return e.run(ctx, text)
}

func (e *Exchange) run(ctx context.Context, text string) Outcome {
	user := model.NewMessageAt(model.TypeUser, text, e.now())

	e.store.Dispatch(store.SetUserInput{Text: ""}, store.SetLoading{Loading: true})
	defer e.store.SetLoading(false)

	state := e.store.Dispatch(store.AddMessage{Message: user})
	priorID := state.CurrentConversationID
	thread := state.Messages

	resp, err := e.client.Chat(ctx, api.NewChatRequest(text, priorID))
	if err != nil {
		log.Printf("exchange: chat request failed: %v", err)
		bot := model.NewMessageAt(model.TypeBot, FallbackMessage, e.now())
		e.store.AddMessage(bot)
		return Outcome{Sent: true, Reply: bot, Err: err}
	}

	at := e.now()
	bot := model.NewMessageAt(model.TypeBot, resp.Response, at)
	e.store.Dispatch(
		store.AddMessage{Message: bot},
		store.RecordExchange{
			PriorID:        priorID,
			ConversationID: resp.ConversationID,
			Thread:         append(model.CloneMessages(thread), bot),
			User:           user,
			Bot:            bot,
			At:             at,
		},
	)
	return Outcome{Sent: true, Reply: bot, ConversationID: resp.ConversationID}
}
