// Package archive edits game-data archives section by section.
//
// A Document is loaded from raw bytes and a format descriptor. One section at a
// time is open: its fields are decoded by the mapper registered for it, edited in
// memory and flushed back when another section is opened or the document is
// serialized.
//
//	doc, err := archive.Load(data, desc, archive.WithLayoutSet(ls))
//	if err != nil {
//		return err
//	}
//	if _, err := doc.OpenSection("playerConcept01"); err != nil {
//		return err
//	}
//	if err := doc.SetField("speed", field.Int(85)); err != nil {
//		return err
//	}
//	out, err := doc.Serialize()
//
// Sections without a mapper open as a single read-only placeholder record and are
// never written. Padding fields are re-encoded unchanged and cannot be edited.
//
// Section JSON exports look like:
//
//	{
//	    "playerConcept01": {
//	        "speed": 80,
//	        "isStarter": true
//	    }
//	}
package archive
