package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&UserRole{},
		&Video{},
		&VideoLike{},
		&VideoView{},
		&ViewThrottle{},
		&CoinTransaction{},
		&CreatorEarning{},
		&AdSession{},
		&RewardClaim{},
		&PayoutRequest{},
		&Notification{},
	}
}
