// Package cache wraps the Redis client used for duplicate-document
// detection and share-token storage. All helpers are best-effort: a missing
// or unreachable Redis never blocks a verification.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meghan128/sportx-sub001/internal/verification"
)

var Rdb *redis.Client

// VerdictTTL is how long a verdict for a given document hash stays cached.
const VerdictTTL = 24 * time.Hour

func Init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		log.Println("(WARN): redis unavailable, verdict caching disabled:", err)
		Rdb = nil
		return
	}
	fmt.Println("(SUCCESS): connected to redis")
}

// CachedVerdict is what a repeated upload of the same document gets back
// without re-running OCR. Entries are keyed by the caller-derived request
// digest (document hash plus type and candidate list), never by the document
// hash alone.
type CachedVerdict struct {
	Verdict     verification.AuthenticityVerdict `json:"verdict"`
	NameMatches []verification.NameMatch         `json:"nameMatches"`
}

func verdictKey(key string) string { return "verify:doc:" + key }

func GetVerdict(ctx context.Context, key string) (CachedVerdict, bool) {
	var out CachedVerdict
	if Rdb == nil {
		return out, false
	}
	raw, err := Rdb.Get(ctx, verdictKey(key)).Bytes()
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func SetVerdict(ctx context.Context, key string, v CachedVerdict) {
	if Rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := Rdb.Set(ctx, verdictKey(key), raw, VerdictTTL).Err(); err != nil {
		log.Println("(WARN): failed to cache verdict:", err)
	}
}

func shareKey(recordID string) string { return "verify:share:" + recordID }

// StoreShareToken remembers the active share token for a record so it can be
// revoked before its JWT expiry.
func StoreShareToken(ctx context.Context, recordID, token string, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, shareKey(recordID), token, ttl).Err(); err != nil {
		log.Println("(WARN): failed to store share token:", err)
	}
}

// ShareTokenActive reports whether the presented token is still the active
// one for the record. With no Redis there is no revocation list, so the JWT
// expiry alone governs.
func ShareTokenActive(ctx context.Context, recordID, token string) bool {
	if Rdb == nil {
		return true
	}
	stored, err := Rdb.Get(ctx, shareKey(recordID)).Result()
	if err != nil {
		return false
	}
	return stored == token
}

func RevokeShareToken(ctx context.Context, recordID string) {
	if Rdb == nil {
		return
	}
	Rdb.Del(ctx, shareKey(recordID))
}
