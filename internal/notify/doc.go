// Package notify delivers availability alerts.
//
// [Mailer] renders a plain-text and HTML email from a
// [slotwatch.Notification] and hands it to an [EmailSender]; [SESSender]
// sends through Amazon SES. [SoundAlerter] plays a short system sound with
// whatever player the platform provides.
//
// Every delivery is best-effort. Errors are returned to the caller, which
// logs them; nothing here retries.
package notify
