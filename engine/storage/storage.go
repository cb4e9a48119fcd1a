package storage

import (
	"strconv"
	"sync"
	"time"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/config"
	"github.com/gwparam/paramstore/engine/gameobject"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/gwutils"
	"github.com/gwparam/paramstore/engine/opmon"
	"github.com/gwparam/paramstore/engine/post"
	"github.com/gwparam/paramstore/engine/storage/backend/filesystem"
	"github.com/gwparam/paramstore/engine/storage/backend/mongodb"
	"github.com/gwparam/paramstore/engine/storage/backend/redis"
	"github.com/gwparam/paramstore/engine/storage/backend/redis_cluster"
	"github.com/gwparam/paramstore/engine/storage/storage_common"
	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
)

const (
	_SAVE_RETRY_LIMIT = 10
	_RETRY_INTERVAL   = time.Second
)

var (
	storageEngine            storagecommon.ObjectStorage
	openStorageEngine        func() (storagecommon.ObjectStorage, error)
	operationQueue           *xnsyncutil.SyncQueue
	storageRoutineTerminated *xnsyncutil.OneTimeCond
	lifecycleLock            sync.Mutex
)

type saveRequest struct {
	ClassName string
	ObjectID  common.ObjectID
	Doc       map[string]interface{}
	Callback  SaveCallbackFunc
}

type loadRequest struct {
	Class    *attr.ClassDesc
	ObjectID common.ObjectID
	Callback LoadCallbackFunc
}

type existsRequest struct {
	ClassName string
	ObjectID  common.ObjectID
	Callback  ExistsCallbackFunc
}

type listObjectIDsRequest struct {
	ClassName string
	Callback  ListCallbackFunc
}

// SaveCallbackFunc is the callback type of storage Save
type SaveCallbackFunc func(err error)

// LoadCallbackFunc is the callback type of storage Load. obj is nil when the object was never saved.
type LoadCallbackFunc func(obj *gameobject.GameObjectData, err error)

// ExistsCallbackFunc is the callback type of storage Exists
type ExistsCallbackFunc func(exists bool, err error)

// ListCallbackFunc is the callback type of storage ListObjectIDs
type ListCallbackFunc func([]common.ObjectID, error)

// Save stores the persistent attributes of obj. The document is taken before Save returns, so obj
// may be mutated right after.
func Save(id common.ObjectID, obj *gameobject.GameObjectData, callback SaveCallbackFunc) {
	doc, err := obj.PersistentValueSet().AsJSON()
	if err != nil {
		gwlog.Errorf("storage: save %s %s: %s", obj.Class().Name, id, err)
		if callback != nil {
			post.Post(func() { callback(err) })
		}
		return
	}
	push(saveRequest{
		ClassName: obj.Class().Name,
		ObjectID:  id,
		Doc:       doc,
		Callback:  callback,
	})
}

// Load loads a saved object of class as a template object without parent
func Load(class *attr.ClassDesc, id common.ObjectID, callback LoadCallbackFunc) {
	push(loadRequest{
		Class:    class,
		ObjectID: id,
		Callback: callback,
	})
}

// Exists checks if an object of the class is saved
func Exists(className string, id common.ObjectID, callback ExistsCallbackFunc) {
	push(existsRequest{
		ClassName: className,
		ObjectID:  id,
		Callback:  callback,
	})
}

// ListObjectIDs returns the ids of all saved objects of a class
//
// Return values can be large for common classes
func ListObjectIDs(className string, callback ListCallbackFunc) {
	push(listObjectIDsRequest{
		ClassName: className,
		Callback:  callback,
	})
}

// Tick runs the callbacks of finished operations on the calling goroutine
func Tick() int {
	return post.Tick()
}

func push(req interface{}) {
	if operationQueue == nil {
		gwlog.Panicf("storage: not initialized")
	}
	operationQueue.Push(req)
	checkOperationQueueLen()
}

var recentWarnedQueueLen = 0

func checkOperationQueueLen() {
	qlen := operationQueue.Len()
	if qlen > 100 && qlen%100 == 0 && recentWarnedQueueLen != qlen {
		gwlog.Warnf("Storage operation queue length = %d", qlen)
		recentWarnedQueueLen = qlen
	}
}

// Initialize opens the storage configured in [storage] and starts the storage routine
func Initialize() error {
	cfg := config.GetStorage()
	return InitializeWith(func() (storagecommon.ObjectStorage, error) {
		return Open(cfg)
	})
}

// InitializeWith starts the storage routine on storage returned by open. open is called again to
// reconnect after the backend reports EOF.
func InitializeWith(open func() (storagecommon.ObjectStorage, error)) error {
	lifecycleLock.Lock()
	defer lifecycleLock.Unlock()
	if operationQueue != nil {
		return errors.Errorf("storage is already initialized")
	}

	openStorageEngine = open
	storageEngine = nil
	if err := assureStorageEngineReady(); err != nil {
		return errors.Wrap(err, "storage engine is not ready")
	}
	operationQueue = xnsyncutil.NewSyncQueue()
	storageRoutineTerminated = xnsyncutil.NewOneTimeCond()
	go storageRoutine(operationQueue)
	return nil
}

// Shutdown waits for queued operations to finish and closes the storage.
// Callbacks of the finished operations still need a Tick.
func Shutdown() {
	lifecycleLock.Lock()
	defer lifecycleLock.Unlock()
	if operationQueue == nil {
		return
	}
	operationQueue.Close()
	storageRoutineTerminated.Wait()
	operationQueue = nil
}

// Open opens the backend described by cfg
func Open(cfg *config.StorageConfig) (storagecommon.ObjectStorage, error) {
	switch cfg.Type {
	case "filesystem":
		return objectstoragefilesystem.OpenDirectory(cfg.Directory)
	case "mongodb":
		return objectstoragemongodb.OpenMongoDB(cfg.Url, cfg.DB)
	case "redis":
		dbindex, err := strconv.Atoi(cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "redis db must be integer")
		}
		return objectstorageredis.OpenRedis(cfg.Url, dbindex)
	case "redis_cluster":
		return objectstoragerediscluster.OpenRedisCluster(cfg.StartNodes.ToList())
	}
	return nil, errors.Errorf("unknown storage type: %s", cfg.Type)
}

func assureStorageEngineReady() (err error) {
	if storageEngine != nil {
		return
	}
	storageEngine, err = openStorageEngine()
	return
}

func closeOnEOF(err error) {
	if err != nil && storageEngine != nil && storageEngine.IsEOF(err) {
		storageEngine.Close()
		storageEngine = nil
	}
}

func storageRoutine(queue *xnsyncutil.SyncQueue) {
	for {
		op := queue.Pop()
		if op == nil { // storage closed
			break
		}
		for {
			if err := assureStorageEngineReady(); err != nil {
				gwlog.Errorf("Storage engine is not ready: %s", err)
				time.Sleep(_RETRY_INTERVAL)
				continue
			}
			break
		}
		_ = gwutils.CatchPanic(func() error {
			handleOperation(op)
			return nil
		})
	}

	if storageEngine != nil {
		storageEngine.Close()
		storageEngine = nil
	}
	storageRoutineTerminated.Signal()
}

func handleOperation(op interface{}) {
	switch req := op.(type) {
	case saveRequest:
		handleSave(req)
	case loadRequest:
		monop := opmon.StartOperation("storage.load")
		gwlog.Debugf("storage: LOADING %s %s ...", req.Class.Name, req.ObjectID)
		doc, err := storageEngine.Read(req.Class.Name, req.ObjectID)
		var obj *gameobject.GameObjectData
		if err != nil {
			gwlog.Errorf("storage: load %s %s failed: %s", req.Class.Name, req.ObjectID, err)
		} else if doc != nil {
			obj = gameobject.New(req.Class)
			if err = obj.FromJSON(doc); err != nil {
				gwlog.Errorf("storage: load %s %s: bad document: %s", req.Class.Name, req.ObjectID, err)
				obj = nil
			} else {
				obj.ClearChanges()
			}
		}
		monop.Finish(time.Millisecond * 100)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(obj, err)
			})
		}
		closeOnEOF(err)
	case existsRequest:
		monop := opmon.StartOperation("storage.exists")
		exists, err := storageEngine.Exists(req.ClassName, req.ObjectID)
		monop.Finish(time.Millisecond * 100)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(exists, err)
			})
		}
		closeOnEOF(err)
	case listObjectIDsRequest:
		monop := opmon.StartOperation("storage.list")
		ids, err := storageEngine.List(req.ClassName)
		if err != nil {
			gwlog.TraceError("ListObjectIDs %s failed: %s", req.ClassName, err)
		}
		monop.Finish(time.Millisecond * 1000)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(ids, err)
			})
		}
		closeOnEOF(err)
	default:
		gwlog.Panicf("storage: unknown operation: %v", op)
	}
}

func handleSave(req saveRequest) {
	monop := opmon.StartOperation("storage.save")
	var err error
	for retry := 0; retry < _SAVE_RETRY_LIMIT; retry++ {
		gwlog.Debugf("storage: SAVING %s %s ...", req.ClassName, req.ObjectID)
		if err = assureStorageEngineReady(); err != nil {
			gwlog.Errorf("Storage engine is not ready: %s", err)
			time.Sleep(_RETRY_INTERVAL)
			continue
		}
		err = storageEngine.Write(req.ClassName, req.ObjectID, req.Doc)
		if err == nil {
			break
		}
		gwlog.Errorf("storage: save %s %s failed: %s", req.ClassName, req.ObjectID, err)
		closeOnEOF(err)
		time.Sleep(_RETRY_INTERVAL)
	}
	monop.Finish(time.Millisecond * 100)
	if req.Callback != nil {
		post.Post(func() {
			req.Callback(err)
		})
	}
}
