package model

// Coin defines a custom coin type
type Coin string

const (
	// NoCoin is a undefined coin
	NoCoin Coin = ""
	// BTC represents bitcoin
	BTC Coin = "BTC"
	// ETH represents the ethereum token
	ETH Coin = "ETH"
)

// Signal defines the direction of a price prediction.
type Signal byte

const (
	// NoSignal defines a missing or undecided prediction.
	NoSignal Signal = iota
	// Buy defines an upwards prediction.
	Buy
	// Sell defines a downwards prediction.
	Sell
	// Hold defines a flat prediction e.g. no action.
	Hold
)

// SignedSignal returns the signal based on the given sign.
func SignedSignal(v float64) Signal {
	if v > 0 {
		return Buy
	} else if v < 0 {
		return Sell
	}
	return Hold
}

// Sign returns the appropriate sign for the given signal for mathematical operations.
func (s Signal) Sign() float64 {
	switch s {
	case Buy:
		return 1.0
	case Sell:
		return -1.0
	}
	return 0.0
}

// Inv inverts the signal direction.
func (s Signal) Inv() Signal {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	case Hold:
		return Hold
	}
	return NoSignal
}

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Hold:
		return "hold"
	}
	return "none"
}
