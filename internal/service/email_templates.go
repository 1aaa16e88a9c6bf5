package service

import "fmt"

// emailLayout wraps body HTML in the shared email shell
func emailLayout(title, bodyHTML string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d6a4f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2d6a4f; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
%s
		</div>
		<div class="footer">
			<p>This is an automated email from TaskHive. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, title, bodyHTML)
}

const emailFooterText = "\n---\nThis is an automated email from TaskHive. Please do not reply.\n"

// invitationEmail is sent to the invitee when an invitation is created.
// The accept and reject links carry the single-use token and land on
// public, unauthenticated endpoints.
func invitationEmail(baseURL, to, inviterName, projectName, message, token string) Email {
	acceptLink := fmt.Sprintf("%s/invitations/accept?token=%s", baseURL, token)
	rejectLink := fmt.Sprintf("%s/invitations/reject?token=%s", baseURL, token)

	personalNote := ""
	personalNoteText := ""
	if message != "" {
		personalNote = fmt.Sprintf("<p><em>%q</em></p>", message)
		personalNoteText = fmt.Sprintf("\n%q\n", message)
	}

	bodyHTML := fmt.Sprintf(`
			<p>Hi,</p>
			<p>%s has invited you to join the project <strong>%s</strong> on TaskHive.</p>
			%s
			<p style="text-align: center;">
				<a href="%s" class="button">Accept Invitation</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p>Not interested? You can <a href="%s">decline the invitation</a>.</p>
			<p><strong>This invitation expires in 7 days.</strong></p>`,
		inviterName, projectName, personalNote, acceptLink, acceptLink, rejectLink)

	bodyText := fmt.Sprintf(`Hi,

%s has invited you to join the project %s on TaskHive.
%s
Accept the invitation:
%s

Not interested? Decline here:
%s

This invitation expires in 7 days.
%s`, inviterName, projectName, personalNoteText, acceptLink, rejectLink, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("You've been invited to join %s on TaskHive", projectName),
		HTMLBody: emailLayout("Project Invitation", bodyHTML),
		TextBody: bodyText,
	}
}

// welcomeEmail is sent to the invitee after they accept
func welcomeEmail(baseURL, to, name, projectName string) Email {
	bodyHTML := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>You're now a member of <strong>%s</strong>. You can see your tasks and project activity on your dashboard.</p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Go to TaskHive</a>
			</p>`, name, projectName, baseURL)

	bodyText := fmt.Sprintf(`Hi %s,

You're now a member of %s. You can see your tasks and project activity on your dashboard.

Go to TaskHive: %s/login
%s`, name, projectName, baseURL, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Welcome to %s", projectName),
		HTMLBody: emailLayout("Welcome!", bodyHTML),
		TextBody: bodyText,
	}
}

// invitationAcceptedEmail notifies the inviter that their invitation was
// accepted
func invitationAcceptedEmail(to, inviterName, inviteeName, projectName string) Email {
	bodyHTML := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p><strong>%s</strong> accepted your invitation and joined <strong>%s</strong>.</p>`,
		inviterName, inviteeName, projectName)

	bodyText := fmt.Sprintf(`Hi %s,

%s accepted your invitation and joined %s.
%s`, inviterName, inviteeName, projectName, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("%s joined %s", inviteeName, projectName),
		HTMLBody: emailLayout("Invitation Accepted", bodyHTML),
		TextBody: bodyText,
	}
}

// invitationRejectedEmail notifies the inviter that their invitation was
// declined
func invitationRejectedEmail(to, inviterName, inviteeEmail, projectName string) Email {
	bodyHTML := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>%s declined your invitation to join <strong>%s</strong>.</p>`,
		inviterName, inviteeEmail, projectName)

	bodyText := fmt.Sprintf(`Hi %s,

%s declined your invitation to join %s.
%s`, inviterName, inviteeEmail, projectName, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Invitation to %s was declined", projectName),
		HTMLBody: emailLayout("Invitation Declined", bodyHTML),
		TextBody: bodyText,
	}
}

// submissionReviewedEmail notifies the submitter of the review decision
func submissionReviewedEmail(to, name, taskTitle, decision, feedback string) Email {
	feedbackHTML := ""
	feedbackText := ""
	if feedback != "" {
		feedbackHTML = fmt.Sprintf("<p>Reviewer feedback:</p><p><em>%s</em></p>", feedback)
		feedbackText = fmt.Sprintf("\nReviewer feedback:\n%s\n", feedback)
	}

	bodyHTML := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your submission for <strong>%s</strong> was reviewed: <strong>%s</strong>.</p>
			%s`, name, taskTitle, decision, feedbackHTML)

	bodyText := fmt.Sprintf(`Hi %s,

Your submission for %s was reviewed: %s.
%s%s`, name, taskTitle, decision, feedbackText, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your submission for %s was reviewed", taskTitle),
		HTMLBody: emailLayout("Submission Reviewed", bodyHTML),
		TextBody: bodyText,
	}
}

// leaveDecidedEmail notifies the requester of the leave request decision
func leaveDecidedEmail(to, name, projectName string, approved bool) Email {
	decision := "approved"
	if !approved {
		decision = "rejected"
	}

	bodyHTML := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your request to leave <strong>%s</strong> was <strong>%s</strong>.</p>`,
		name, projectName, decision)

	bodyText := fmt.Sprintf(`Hi %s,

Your request to leave %s was %s.
%s`, name, projectName, decision, emailFooterText)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your leave request for %s was %s", projectName, decision),
		HTMLBody: emailLayout("Leave Request Decision", bodyHTML),
		TextBody: bodyText,
	}
}
