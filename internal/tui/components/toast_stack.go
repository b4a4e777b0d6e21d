package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// RenderToasts stacks toasts newest last, right aligned within width
func RenderToasts(toasts []notify.Toast, width, spinnerFrame int) string {
	if len(toasts) == 0 {
		return ""
	}

	boxWidth := min(50, max(20, width/2))
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		var style lipgloss.Style
		icon := "i"
		switch t.Kind {
		case notify.KindSuccess:
			style, icon = styles.ToastSuccessStyle, styles.SuccessStyle.Render("✓")
		case notify.KindError:
			style, icon = styles.ToastErrorStyle, styles.ErrorStyle.Render("✗")
		case notify.KindProgress:
			style = styles.ToastProgressStyle
			icon = styles.SpinnerStyle.Render(styles.SpinnerFrames[spinnerFrame%len(styles.SpinnerFrames)])
		default:
			style = styles.ToastInfoStyle
		}
		boxes = append(boxes, style.Width(boxWidth).Render(icon+" "+t.Message))
	}

	stack := strings.Join(boxes, "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
