package bet

// UserBet is one user's prediction for one fixture within one round.
// PointsAwarded stays nil until the round is scored.
type UserBet struct {
	ID            int64
	UserID        string
	FixtureID     int64
	RoundID       int64
	Prediction    string
	PointsAwarded *int
}

// PointsAward pairs a bet with its computed points for the batch update.
type PointsAward struct {
	BetID  int64
	Points int
}
