package types

// Response messages shared by handlers. Clients match on these strings, so
// treat them as part of the API.
const (
	MsgUserExists          = "User already exists"
	MsgMissingCredentials  = "Email and password are required"
	MsgUserCreated         = "User created successfully"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgLogoutSuccessful    = "Logged out successfully"
	MsgLogoutFailed        = "Failed to logout"
	MsgUnauthorized        = "Unauthorized"
	MsgInvalidRequest      = "Invalid request"
	MsgInternalServerError = "Internal server error"
	MsgTooManyRequests     = "Too many requests"

	MsgUserNotFound      = "User not found"
	MsgUserEmailNotFound = "User email not found"
	MsgUserDeleted       = "User deleted"
	MsgInvalidUserID     = "Invalid user ID"

	MsgProfileNotFound      = "Profile not found"
	MsgProfileDeleted       = "Profile deleted"
	MsgProfileAlreadyExists = "User already has a profile"
	MsgAvatarRequired       = "Avatar file is required"
	MsgAvatarTooLarge       = "Avatar file is too large"
	MsgAvatarType           = "Avatar must be a jpeg, png, gif or webp image"

	MsgReviewNotFound = "Review not found"
	MsgReviewDeleted  = "Review deleted"
	MsgReviewExists   = "Review already exists"
	MsgInvalidReview  = "Invalid review ID"

	MsgEventNotFound        = "Event not found"
	MsgEventDeleted         = "Event deleted"
	MsgInvalidEventID       = "Invalid event ID"
	MsgOrganizerOnly        = "Only organizers can create events"
	MsgUserIDRequired       = "userId is required in request body"
	MsgDeadlinePassed       = "Registration deadline has passed"
	MsgMaxParticipants      = "Event has reached maximum participants"
	MsgCapacityTooLow       = "Maximum participants cannot be below the number already registered"
	MsgAlreadyRegistered    = "User is already registered for this event"
	MsgNotRegistered        = "User is not registered for this event"
	MsgEventAlreadyActive   = "Event is already active"
	MsgEventNotActive       = "Event is not active"
	MsgMustBeActiveForStart = "Event must be active to start a new round"
	MsgRoundActive          = "Current round must be ended before starting a new one"
	MsgMaxRounds            = "Maximum number of rounds (3) has been reached"
	MsgNoActiveRound        = "No active round to end"
	MsgMustBeActiveForEnd   = "Event must be active to end a round"
	MsgEventStarting        = "%s is starting"
	MsgRoundStarting        = "Round %d of %s has started"

	MsgContactUserNotFound = "Contact user not found"
	MsgContactExists       = "Contact already exists"
	MsgContactNotFound     = "Shared contact not found"
	MsgContactDeleted      = "Shared contact deleted"

	MsgNotificationMessageRequired = "Message is required"
	MsgNotificationNotFound        = "Notification not found"
	MsgNotificationDeleted         = "Notification deleted"
)
