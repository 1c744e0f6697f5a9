package profile

// Profile holds the display data the leaderboard needs for a user.
type Profile struct {
	ID       string
	FullName string
}
