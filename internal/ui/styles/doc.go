// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the shopdesk TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light and
dark terminals. The theme can be forced with the ui.theme setting.

# Color System (colors.go)

  - Indigo - Brand color, header and focused borders
  - Sky - User messages and the input prompt
  - Violet - Assistant messages and the loading spinner
  - Emerald, Amber, Rose - Success, warning and error states

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	fmt.Println(theme.UserBubble.Render("Where is my order?"))

NewTheme detects the terminal color profile with termenv. "dark" and "light"
override the background detection for every AdaptiveColor.

# Spinners (animations.go)

SpinnerConfig frame sets convert to bubbles spinners with Bubbles().
*/
package styles
