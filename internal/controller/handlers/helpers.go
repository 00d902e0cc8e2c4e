package handlers

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/service"
)

// StatusEmoji возвращает emoji для статуса слота
func StatusEmoji(status model.SlotStatus) string {
	if status == model.SlotStatusBooked {
		return "🔴"
	}
	return "🟢"
}

// FormatDay форматирует состояние колышков на дату
func FormatDay(date string, statuses []service.PegStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s\n", date)

	for _, status := range statuses {
		if status.Slot == nil {
			fmt.Fprintf(&sb, "\n⚪ %s: not in calendar", status.Peg)
			continue
		}
		fmt.Fprintf(&sb, "\n%s %s: %s", StatusEmoji(status.Slot.Status), status.Peg, status.Slot.Status)
	}

	return sb.String()
}
