package objectstoragefilesystem

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/storage/storage_common"
	"github.com/pkg/errors"
)

var (
	dataPacker = netutil.JSONMsgPacker{Indent: "\t"}
)

type fileSystemObjectStorage struct {
	directory string
}

// OpenDirectory opens a directory as object storage, one JSON file per object
func OpenDirectory(directory string) (storagecommon.ObjectStorage, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	return &fileSystemObjectStorage{
		directory: directory,
	}, nil
}

func getFileName(className string, id common.ObjectID) string {
	return className + "$" + base64.URLEncoding.EncodeToString([]byte(id))
}

func (es *fileSystemObjectStorage) getFilePath(className string, id common.ObjectID) string {
	return filepath.Join(es.directory, getFileName(className, id))
}

func (es *fileSystemObjectStorage) Write(className string, id common.ObjectID, doc map[string]interface{}) error {
	saveFile := es.getFilePath(className, id)
	dataBytes, err := dataPacker.PackMsg(doc, nil)
	if err != nil {
		return err
	}

	gwlog.Debugf("Saving to file %s: %d bytes", saveFile, len(dataBytes))
	// readers never see a partial document
	tmpFile := saveFile + ".tmp"
	if err := os.WriteFile(tmpFile, dataBytes, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, saveFile)
}

func (es *fileSystemObjectStorage) Read(className string, id common.ObjectID) (map[string]interface{}, error) {
	dataBytes, err := os.ReadFile(es.getFilePath(className, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc map[string]interface{}
	if err := dataPacker.UnpackMsg(dataBytes, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse %s %s", className, id)
	}
	return doc, nil
}

func (es *fileSystemObjectStorage) Exists(className string, id common.ObjectID) (bool, error) {
	_, err := os.Stat(es.getFilePath(className, id))
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (es *fileSystemObjectStorage) List(className string) ([]common.ObjectID, error) {
	prefix := className + "$"
	files, err := filepath.Glob(filepath.Join(es.directory, prefix+"*"))
	if err != nil {
		return nil, err
	}
	res := make([]common.ObjectID, 0, len(files))
	for _, fpath := range files {
		_, fn := filepath.Split(fpath)
		if strings.HasSuffix(fn, ".tmp") {
			continue
		}
		idbytes, err := base64.URLEncoding.DecodeString(fn[len(prefix):])
		if err != nil {
			gwlog.TraceError("fail to parse file %s", fpath)
			continue
		}
		res = append(res, common.ObjectID(idbytes))
	}
	return res, nil
}

func (es *fileSystemObjectStorage) Close() {
	// need to do nothing
}

func (es *fileSystemObjectStorage) IsEOF(err error) bool {
	return false
}
