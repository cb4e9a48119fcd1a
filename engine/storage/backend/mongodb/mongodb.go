package objectstoragemongodb

import (
	"io"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/storage/storage_common"
	"github.com/pkg/errors"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const (
	_DEFAULT_DB_NAME = "paramstore"
)

type mongoDBObjectStorage struct {
	db *mgo.Database
}

// OpenMongoDB opens mongodb as object storage, one collection per class
func OpenMongoDB(url string, dbname string) (storagecommon.ObjectStorage, error) {
	gwlog.Debugf("Connecting MongoDB ...")
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "mongodb dial failed")
	}

	session.SetMode(mgo.Monotonic, true)
	if dbname == "" {
		dbname = _DEFAULT_DB_NAME
	}
	return &mongoDBObjectStorage{
		db: session.DB(dbname),
	}, nil
}

func (es *mongoDBObjectStorage) getCollection(className string) *mgo.Collection {
	return es.db.C(className)
}

func (es *mongoDBObjectStorage) Write(className string, id common.ObjectID, doc map[string]interface{}) error {
	_, err := es.getCollection(className).UpsertId(string(id), bson.M{
		"data": doc,
	})
	return err
}

func (es *mongoDBObjectStorage) Read(className string, id common.ObjectID) (map[string]interface{}, error) {
	var doc bson.M
	err := es.getCollection(className).FindId(string(id)).One(&doc)
	if err == mgo.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	data, ok := doc["data"].(bson.M)
	if !ok {
		return nil, common.InvalidDataf("%s %s: document has no data", className, id)
	}
	return convertM2Map(data), nil
}

func convertM2Map(m bson.M) map[string]interface{} {
	ma := map[string]interface{}(m)
	convertM2MapInMap(ma)
	return ma
}

func convertM2MapInMap(m map[string]interface{}) {
	for k, v := range m {
		m[k] = convertM2Value(v)
	}
}

func convertM2Value(v interface{}) interface{} {
	switch im := v.(type) {
	case bson.M:
		return convertM2Map(im)
	case map[string]interface{}:
		convertM2MapInMap(im)
	case []interface{}:
		for i, e := range im {
			im[i] = convertM2Value(e)
		}
	}
	return v
}

func (es *mongoDBObjectStorage) List(className string) ([]common.ObjectID, error) {
	var docs []bson.M
	err := es.getCollection(className).Find(nil).Select(bson.M{"_id": 1}).All(&docs)
	if err != nil {
		return nil, err
	}

	ids := make([]common.ObjectID, 0, len(docs))
	for _, doc := range docs {
		id, ok := doc["_id"].(string)
		if !ok {
			gwlog.Warnf("%s: skipping document with id %v", className, doc["_id"])
			continue
		}
		ids = append(ids, common.ObjectID(id))
	}
	return ids, nil
}

func (es *mongoDBObjectStorage) Exists(className string, id common.ObjectID) (bool, error) {
	n, err := es.getCollection(className).FindId(string(id)).Count()
	return n > 0, err
}

func (es *mongoDBObjectStorage) Close() {
	es.db.Session.Close()
}

func (es *mongoDBObjectStorage) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
