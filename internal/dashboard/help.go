package dashboard

import "github.com/charmbracelet/bubbles/help"

// helpState describes which input currently owns the keyboard.
type helpState int

const (
	helpList helpState = iota
	helpSearch
	helpPicker
	helpConfirm
)

// HelpBindings returns the help.KeyMap for the given mode and input state,
// providing context-aware help bar content.
func HelpBindings(mode Mode, state helpState) help.KeyMap {
	switch state {
	case helpSearch:
		return SearchKeyMap()
	case helpPicker:
		return PickerKeyMap()
	case helpConfirm:
		return ConfirmKeyMap()
	}
	km := CatalogKeyMap()
	if mode != ModeCatalog {
		km.Remove.SetEnabled(true)
		km.PrevPage.SetEnabled(false)
		km.NextPage.SetEnabled(false)
		km.FirstPage.SetEnabled(false)
		km.LastPage.SetEnabled(false)
		km.Search.SetEnabled(false)
		km.Generation.SetEnabled(false)
		km.Type.SetEnabled(false)
	}
	return km
}
