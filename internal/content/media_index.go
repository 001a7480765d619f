package content

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ObjectInfo is one entry of an object-storage listing.
type ObjectInfo struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type MediaIndex struct {
	Hash         uint64       `json:"hash"`
	Entries      []ObjectInfo `json:"entries"`
	AtualizadoEm time.Time    `json:"atualizadoEm"`
}

type MediaStore interface {
	SaveIndex(ctx context.Context, idx *MediaIndex) error
	GetIndex(ctx context.Context) (*MediaIndex, error) // nil when never built
}

// Media rebuilds the media index from an object listing, skipping the
// rebuild when the listing hash matches the stored one.
type Media struct {
	store MediaStore
	now   func() time.Time
}

func NewMedia(store MediaStore) *Media {
	return &Media{store: store, now: time.Now}
}

// Sync returns the current index and whether it was rebuilt.
func (m *Media) Sync(ctx context.Context, listing []ObjectInfo) (*MediaIndex, bool, error) {
	h := listingHash(listing)

	cur, err := m.store.GetIndex(ctx)
	if err != nil {
		return nil, false, err
	}
	if cur != nil && cur.Hash == h {
		return cur, false, nil
	}

	entries := append([]ObjectInfo(nil), listing...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	idx := &MediaIndex{Hash: h, Entries: entries, AtualizadoEm: m.now().UTC()}
	if err := m.store.SaveIndex(ctx, idx); err != nil {
		return nil, false, err
	}
	return idx, true, nil
}

func (m *Media) Index(ctx context.Context) (*MediaIndex, error) {
	return m.store.GetIndex(ctx)
}

// listingHash is order-insensitive: keys are sorted before hashing so a
// reshuffled listing does not force a re-index.
func listingHash(listing []ObjectInfo) uint64 {
	keys := make([]string, len(listing))
	sizes := make(map[string]int64, len(listing))
	for i, o := range listing {
		keys[i] = o.Key
		sizes[o.Key] = o.Size
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00" + strconv.FormatInt(sizes[k], 10) + "\x00")
	}
	return d.Sum64()
}
