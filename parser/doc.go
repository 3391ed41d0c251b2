/*
Package parser turns decoded iCalendar documents into calendar items.

Each VEVENT and VTODO below a VCALENDAR becomes an item.Item. Exceptions
(items carrying a RECURRENCE-ID) are attached to the recurring master with the
same UID; when no such master exists one is synthesized and flagged with
item.Item.IsFakedMaster. VTIMEZONE components only feed timezone resolution,
and any other component is kept verbatim in Result.ExtraComponents.

# Basic Usage

	p := parser.New(parser.WithLogger(logger))
	res, err := p.Parse(file)
	if err != nil {
		return err
	}
	for _, it := range res.Items() {
		fmt.Println(it.ID(), it.Title())
	}

# Asynchronous Parsing

Classification of each subcomponent can be dispatched onto an Executor. The
result is identical to a synchronous parse whatever order the executor runs
units in:

	pool := parser.NewPool(4)
	p.ParseAsync(file, pool, func(res *parser.Result, err error) {
		// called exactly once
	})
	pool.Wait()

EventLoop is a single-threaded alternative that runs queued units when its
Run method is called.

# Timezone Errors

A date referencing a TZID that is neither UTC, floating, nor resolvable
through the tz database or a VTIMEZONE of the document is reported to the
configured Reporter, once per item and zone.
*/
package parser
