// Package ctxutil holds small context helpers shared by the storage layers.
package ctxutil

import "context"

// Canceled returns ctx.Err(): nil while ctx is live, otherwise
// context.Canceled or context.DeadlineExceeded.
// Stores call it on entry so a canceled command never touches the disk.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
