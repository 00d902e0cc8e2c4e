package handlers

const (
	textPrivate = "⛔ This bot is private to the fishery owner."
	textError   = "❌ Something went wrong. Please try again later."

	textHelp = "🎣 Peg booking calendar\n\n" +
		"/calendar [YYYY-MM-DD] - peg status for a day (today by default)\n" +
		"/book YYYY-MM-DD Peg name - book a free peg or release a booked one\n" +
		"/confirm - confirm releasing a booked peg\n" +
		"/cancel - cancel the pending action"

	textBookUsage = "Usage: /book YYYY-MM-DD Peg name\nExample: /book 2024-06-01 Peg 1"
)
