// Package filterstate holds filter selections and their URL encoding.
//
// A State maps filter keys to string values. Range filters keep three
// entries: the combined "<key>" value ("min-max") and the "<key>_Min" and
// "<key>_Max" shadows. Apply keeps them consistent when either half changes.
//
// Decode and Encode form the query-string codec:
//
//	d, err := filterstate.Decode("https://shop.example/list?k1=v1&k2=1-5")
//	// d.Base == "https://shop.example/list"
//	// d.State: k1=v1 k2=1-5 k2_Min=1 k2_Max=5
//	// err is nil; malformed segments are reported but never abort decoding.
//
//	u := filterstate.Encode(d.Base, "com.example.Product", d.State)
//	// https://shop.example/list?cls=com.example.Product&filters=%7B%22filters%22...
//
// The filters parameter carries {"filters":[{<key>:<value>,...}]} as JSON.
// Decoding a URL produced by Encode expands that object back into the state.
//
// State is not safe for concurrent use; its owner serializes access.
package filterstate
