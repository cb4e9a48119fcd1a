package main

import (
	"os"
	"time"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gameobject"
	"github.com/gwparam/paramstore/engine/opmon"
	"github.com/gwparam/paramstore/engine/storage"
)

func runStorageCommand(cmd string, registry *attr.Registry) {
	class := mustClass(registry)
	checkErrorOrQuit(storage.Initialize(), "open storage")

	done := false
	switch cmd {
	case "save":
		id := common.GenObjectID()
		if args.objectID != "" {
			var err error
			id, err = common.ParseObjectID(args.objectID)
			checkErrorOrQuit(err, "bad id")
		}
		obj, err := readDoc(os.Stdin, class)
		checkErrorOrQuit(err, "read object")
		storage.Save(id, obj, func(err error) {
			checkErrorOrQuit(err, "save failed")
			showMsg("saved %s %s", class.Name, id)
			done = true
		})
	case "load":
		id, err := common.ParseObjectID(args.objectID)
		checkErrorOrQuit(err, "bad id")
		storage.Load(class, id, func(obj *gameobject.GameObjectData, err error) {
			checkErrorOrQuit(err, "load failed")
			if obj == nil {
				showMsgAndQuit("%s %s not found", class.Name, id)
			}
			checkErrorOrQuit(writeDoc(os.Stdout, obj.Resolved()), "write object")
			done = true
		})
	case "list":
		storage.ListObjectIDs(class.Name, func(ids []common.ObjectID, err error) {
			checkErrorOrQuit(err, "list failed")
			for _, id := range ids {
				os.Stdout.WriteString(string(id) + "\n")
			}
			done = true
		})
	}

	for !done {
		storage.Tick()
		time.Sleep(10 * time.Millisecond)
	}
	storage.Shutdown()
	opmon.Dump(os.Stderr)
}
