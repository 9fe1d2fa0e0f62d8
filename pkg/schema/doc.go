// Package schema describes filter forms declaratively.
//
// A Schema is an immutable list of field descriptors plus an optional sort-by
// list and base URL. Each FieldDescriptor names a filter key and the control
// used to edit it:
//
//	{
//	    "baseUrl": "http://localhost:8092/search/list",
//	    "sortby": [{"title": "New Arrive", "value": "new"}],
//	    "elements": [
//	        {"title": "Name",   "type": "TEXT",      "key": "name"},
//	        {"title": "Price",  "type": "RANGE_TEXT", "key": "price", "min": 0, "max": 65536},
//	        {"title": "Brands", "type": "CHK_LIST",   "key": "brands", "choices": ["Nike", "Levis"]}
//	    ]
//	}
//
// Schemas decode from JSON or YAML. Field types form a closed set; an
// unrecognized type decodes to FieldUnknown so that a schema written for a
// newer renderer still loads. Validate reports structural problems, and
// Unsupported lists the fields a renderer will skip.
//
// # Choices
//
// The choices of a field are a tagged union. A plain list feeds CHK_LIST and
// OPT_LIST, a list of {url,value} objects feeds IMAGE, and a mapping of
// mappings feeds a dependent CHK_LIST: the choice set is the key list of the
// entry selected by another filter's current value (filterBy). Key order of
// nested mappings is preserved from the source document.
//
// # Sources
//
// Loader reads schemas from local files or from S3 objects addressed as
// s3://bucket/key.
package schema
