package objectstoragerediscluster

import (
	"time"

	rediscluster "github.com/chasex/redis-go-cluster"
	"github.com/gwparam/paramstore/engine/storage/backend/redis"
	"github.com/gwparam/paramstore/engine/storage/storage_common"
	"github.com/pkg/errors"
)

// OpenRedisCluster opens a redis cluster as object storage
func OpenRedisCluster(startNodes []string) (storagecommon.ObjectStorage, error) {
	c, err := rediscluster.NewCluster(&rediscluster.Options{
		StartNodes:   startNodes,
		ConnTimeout:  10 * time.Second, // Connection timeout
		ReadTimeout:  60 * time.Second, // Read timeout
		WriteTimeout: 60 * time.Second, // Write timeout
		KeepAlive:    1,                // Maximum keep alive connecion in each node
		AliveTime:    10 * time.Minute, // Keep alive timeout
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect redis cluster failed")
	}

	return objectstorageredis.NewStorage(c, c.Close), nil
}
