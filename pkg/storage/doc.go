// Package storage keeps searchable collections in SQLite and runs search
// conditions against them.
//
// Every collection is a table whose columns are addressed by dotted paths
// ("artist.name" is stored in column artist_name). A condition path is the
// longest column path it starts with followed by a lookup chain:
//
//	title.icontains      title LIKE '%term%'
//	released.year.gte    CAST(strftime('%Y', released) AS INTEGER) >= term
//	id                   id = term
//
// Every lookup but the last must be a transform (date, year, month, week,
// week_day, quarter, time, hour, minute, second). A chain ending in a
// transform compares with exact. regex and iregex use Go regular expression
// syntax through the driver's REGEXP operator.
package storage
