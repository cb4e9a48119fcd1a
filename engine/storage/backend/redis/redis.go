package objectstorageredis

import (
	"io"
	"strings"

	"github.com/garyburd/redigo/redis"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/storage/storage_common"
	"github.com/pkg/errors"
)

var (
	dataPacker = netutil.MessagePackMsgPacker{}
)

// Commander runs redis commands. Both a redis.Conn and a redis cluster client satisfy it.
type Commander interface {
	Do(commandName string, args ...interface{}) (reply interface{}, err error)
}

type redisObjectStorage struct {
	c     Commander
	close func()
}

// OpenRedis opens redis as object storage. url is either host:port or a redis:// URL.
func OpenRedis(url string, dbindex int) (storagecommon.ObjectStorage, error) {
	var c redis.Conn
	var err error
	if strings.Contains(url, "://") {
		c, err = redis.DialURL(url)
	} else {
		c, err = redis.Dial("tcp", url)
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis dial failed")
	}

	if _, err := c.Do("SELECT", dbindex); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "redis select db failed")
	}

	return NewStorage(c, func() { c.Close() }), nil
}

// NewStorage creates object storage on any redis commander. close is called by Close.
func NewStorage(c Commander, close func()) storagecommon.ObjectStorage {
	return &redisObjectStorage{
		c:     c,
		close: close,
	}
}

// ObjectKey returns the key of an object document
func ObjectKey(className string, id common.ObjectID) string {
	return className + "$" + string(id)
}

// IndexKey returns the key of the set holding all object ids of a class
func IndexKey(className string) string {
	return "paramstore:ids:" + className
}

func (es *redisObjectStorage) List(className string) ([]common.ObjectID, error) {
	members, err := redis.Strings(es.c.Do("SMEMBERS", IndexKey(className)))
	if err != nil {
		return nil, err
	}
	ids := make([]common.ObjectID, len(members))
	for i, m := range members {
		ids[i] = common.ObjectID(m)
	}
	return ids, nil
}

func (es *redisObjectStorage) Write(className string, id common.ObjectID, doc map[string]interface{}) error {
	b, err := dataPacker.PackMsg(doc, nil)
	if err != nil {
		return err
	}

	if _, err = es.c.Do("SET", ObjectKey(className, id), b); err != nil {
		return err
	}
	_, err = es.c.Do("SADD", IndexKey(className), string(id))
	return err
}

func (es *redisObjectStorage) Read(className string, id common.ObjectID) (map[string]interface{}, error) {
	b, err := redis.Bytes(es.c.Do("GET", ObjectKey(className, id)))
	if err == redis.ErrNil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err = dataPacker.UnpackMsg(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "unpack %s %s", className, id)
	}
	return doc, nil
}

func (es *redisObjectStorage) Exists(className string, id common.ObjectID) (bool, error) {
	return redis.Bool(es.c.Do("EXISTS", ObjectKey(className, id)))
}

func (es *redisObjectStorage) Close() {
	if es.close != nil {
		es.close()
	}
}

func (es *redisObjectStorage) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
