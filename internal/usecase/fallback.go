package usecase

import (
	"math/rand"
	"sync"
	"time"
)

// fallbackReplies are shown when the completion gateway fails. They are never
// appended to a conversation log.
var fallbackReplies = [...]string{
	"Kia ora! I'm having a quick connection hiccup. Could you try that again? 🙏",
	"Aroha mai (sorry)! My brain had a moment. Please resend your message.",
	"Oops! Technical gremlins. Let's try once more? 😊",
	"Hmm, something went wrong on my end. Mind trying again? 🔄",
}

// Selector returns an index in [0, n).
type Selector func(n int) int

// RandomSelector returns a goroutine-safe Selector. seed 0 seeds from the clock.
func RandomSelector(seed int64) Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return r.Intn(n)
	}
}

func fallbackReply(sel Selector) string {
	i := sel(len(fallbackReplies))
	if i < 0 || i >= len(fallbackReplies) {
		i = 0
	}
	return fallbackReplies[i]
}
