package health

import (
	"context"
	"os"
	"runtime"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// MongoCheck pings the primary.
func MongoCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx, readpref.Primary()); err != nil {
			return errors.Wrap(err, "mongo ping")
		}
		return nil
	}
}

// DirCheck fails when dir is missing, is not a directory or does not
// accept new files.
func DirCheck(dir string) CheckFunc {
	return func(context.Context) error {
		fi, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return errors.Errorf("%s is not a directory", dir)
		}
		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			return errors.Wrapf(err, "%s is not writable", dir)
		}
		name := f.Name()
		if err := f.Close(); err != nil {
			_ = os.Remove(name)
			return errors.Wrap(err, "close temp file")
		}
		return os.Remove(name)
	}
}

// GoroutineCheck fails when more than limit goroutines are running.
func GoroutineCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds %d", n, limit)
		}
		return nil
	}
}
