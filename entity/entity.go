package entity

// DateLayout is the layout of every calendar date stored by the bot.
// ISO order means lexical comparison of stored dates is date comparison.
const DateLayout = "2006-01-02"

type CheckinResponse struct {
	ID           int64  `db:"id"`
	UserID       string `db:"user_id"`
	UserName     string `db:"user_name"`
	ResponseDate string `db:"response_date"`
	ResponseText string `db:"response_text"`
	Details      string `db:"details"`
}

type LeavePeriod struct {
	ID        int64  `db:"id"`
	UserID    string `db:"user_id"`
	UserName  string `db:"user_name"`
	StartDate string `db:"start_date"`
	EndDate   string `db:"end_date"`
}

type Holiday struct {
	HolidayDate string `db:"holiday_date"`
	Description string `db:"description"`
}

type LoggedMessage struct {
	ID            int64  `db:"id"`
	SenderID      string `db:"sender_id"`
	SenderName    string `db:"sender_name"`
	DestinationID string `db:"destination_id"`
	SentTimestamp string `db:"sent_timestamp"`
	Message       string `db:"message"`
}

type ConfigEntry struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// DailyThread links a calendar date to the timestamp of that day's
// check-in prompt so summaries and confirmations thread under it.
type DailyThread struct {
	ThreadDate string `db:"thread_date"`
	ThreadTS   string `db:"thread_ts"`
}
