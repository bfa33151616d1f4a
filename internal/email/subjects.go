package email

const (
	subjectQuoteProposalFmt    = "Your compliance platform quote %s"
	subjectQuoteReminderFmt    = "Quote %s expires in %d days"
	subjectQuoteReminderLast   = "Quote %s expires today"
	subjectDownloadFollowUpFmt = "Following up on %s"
)
