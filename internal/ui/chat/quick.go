// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// QuickAction is a canned prompt the user can send with one key.
type QuickAction struct {
	Label  string
	Prompt string
}

// QuickActions are offered below the input, bound to F1-F4.
var QuickActions = []QuickAction{
	{Label: "Top Products", Prompt: "What are the top 5 most sold products?"},
	{Label: "Order Status", Prompt: "Show me the status of order ID 12345"},
	{Label: "Stock Check", Prompt: "How many Classic T-Shirts are left in stock?"},
	{Label: "Help", Prompt: "What can you help me with?"},
}

// WelcomeText is shown when the thread is empty and no saved conversation is
// open. It is never added to the thread.
const WelcomeText = "Hello! I'm your AI customer support assistant. I can help you with:\n\n" +
	"- Product information and availability\n" +
	"- Order status and tracking\n" +
	"- Stock levels\n" +
	"- General customer service questions\n\n" +
	"How can I assist you today?"
