/*
Package osc decodes the subset of OpenSoundControl 1.0 needed to watch a
stream of control messages for a single numeric value.

Decoding is deliberately forgiving. A packet is either one OSC message or a
"#bundle" whose elements are size-prefixed messages. Anything the decoder does
not understand (missing terminators, unsupported leading type tags, short
buffers, truncated bundle elements) is skipped without an error, because a
busy OSC port usually carries plenty of traffic nobody asked for.

Only the first argument of a message is kept, and only when it is an
'i' (int32) or 'f' (float32). Both are big-endian on the wire.

Decoding example:

	for _, msg := range osc.Decode(buf[:n]) {
	    if msg.Tag == osc.TagInt32 {
	        fmt.Println(msg.Address, msg.Int())
	    }
	}

The package can also build packets of the same shape, which is handy for
test senders:

	b := osc.NewBundle(time.Now())
	b.Append(osc.NewFloat("/flair/runstate", 9))
	data, _ := b.MarshalBinary()

Bundles read by Decode are flat: an element that is itself a bundle is not
descended into.
*/
package osc
